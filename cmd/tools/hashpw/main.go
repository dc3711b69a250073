// hashpw: ADMIN_PASSWORD_HASH용 bcrypt 해시를 생성/검증하는 도구.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := flag.String("password", "", "plain password (or HASHPW_PASSWORD env)")
	verify := flag.String("verify", "", "existing bcrypt hash to verify against (optional)")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	flag.Parse()

	passwordValue := *password
	if passwordValue == "" {
		passwordValue = os.Getenv("HASHPW_PASSWORD")
	}

	if passwordValue == "" {
		fmt.Fprintln(os.Stderr, "Usage: hashpw -password <plain> [-verify <bcrypt-hash>] (or set HASHPW_PASSWORD)")
		os.Exit(2)
	}

	if *verify != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(*verify), []byte(passwordValue)); err != nil {
			fmt.Printf("Verification FAILED: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Verification SUCCESS")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwordValue), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hash generation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}
