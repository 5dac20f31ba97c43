// Command totpkey prints a new base64 AES-256 key for TOTP_ENCRYPTION_KEY.
package main

import (
	"fmt"
	"os"

	"github.com/dmitrymomot/authkit/pkg/totp"
)

func main() {
	key, err := totp.GenerateEncodedEncryptionKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(key)
}
