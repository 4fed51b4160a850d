// hashpw gera o hash bcrypt de uma senha para login.accounts[].password_hash.
//
//	go run ./cmd/hashpw 'minha-senha'
//	echo -n 'minha-senha' | go run ./cmd/hashpw
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"poi-gateway/logging"
	"poi-gateway/users"
)

func main() {
	logger := logging.New(logging.Config{Format: "console"})

	password, err := readPassword(os.Args[1:])
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read password")
	}
	if password == "" {
		logger.Fatal().Msg("empty password")
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to hash password")
	}
	fmt.Println(hash)
}

func readPassword(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
