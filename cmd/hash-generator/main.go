// Command hash-generator prints a bcrypt hash for a password, suitable for
// seeding users.hashed_password directly, e.g. when bootstrapping an admin.
//
// Usage:
//
//	hash-generator [-cost 12] password
//	echo -n password | hash-generator
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phrazzld/bookswap-api/internal/domain"
	"github.com/phrazzld/bookswap-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt work factor")
	flag.Parse()

	hash, err := run(*cost, flag.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

// run hashes the password given as the single argument, or read from in
// when no argument is present.
func run(cost int, args []string, in io.Reader) (string, error) {
	var password string
	switch len(args) {
	case 0:
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	case 1:
		password = args[0]
	default:
		return "", fmt.Errorf("expected at most one password argument, got %d", len(args))
	}

	if err := domain.ValidatePassword(password); err != nil {
		return "", err
	}

	hasher, err := auth.NewBcryptHasher(cost)
	if err != nil {
		return "", err
	}
	return hasher.Hash(password)
}
