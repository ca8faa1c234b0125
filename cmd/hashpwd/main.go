// Command hashpwd reads a password from the terminal and prints its
// scrypt hash in the format the server stores. Intended for operator and
// support workflows, e.g. seeding accounts manually.
package main

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/authkeep/authkeep/internal/common"
	"github.com/authkeep/authkeep/internal/server/auth"
	"github.com/authkeep/authkeep/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
	defer common.WipeByteArray(password)

	hasher := auth.NewHasher(auth.ScryptParams{
		N:       cfg.ScryptN,
		R:       cfg.ScryptR,
		P:       cfg.ScryptP,
		SaltLen: cfg.ScryptSaltLen,
		KeyLen:  cfg.ScryptKeyLen,
	})

	hash, err := hasher.Hash(string(password))
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}

	fmt.Println(hash)
}
