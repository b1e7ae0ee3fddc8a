package ward_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sealkeep/ward"
)

// Example_basic demonstrates how to open a vault, store a record and
// query it back with a filter expression.
func Example_basic() {
	// Create a temporary directory for the example
	tmpDir, err := os.MkdirTemp("", "ward-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	// Open creates the vault file on first use, keyed by the master
	// password.
	sess, err := ward.Open(filepath.Join(tmpDir, "vault.ward"), "master password")
	if err != nil {
		log.Fatal(err)
	}

	// 1. Store a record. Fields marked sensitive are masked on output.
	_, err = sess.Exec("set gmail user = zahash sensitive pass = amogus url = mail.google.com")
	if err != nil {
		log.Fatal(err)
	}

	// 2. Query it back with a filter expression.
	result, err := sess.Exec("show url contains google and user is zahash")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Lines[0])
	// Output:
	// 'gmail' pass=***** url='mail.google.com' user='zahash'
}

// Example_reveal demonstrates revealing sensitive values and resolving a
// single field value for a clipboard copy.
func Example_reveal() {
	tmpDir, err := os.MkdirTemp("", "ward-reveal-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	sess, err := ward.Open(filepath.Join(tmpDir, "vault.ward"), "master password")
	if err != nil {
		log.Fatal(err)
	}

	if _, err := sess.Exec("set discord sensitive pass = hunter2"); err != nil {
		log.Fatal(err)
	}

	// reveal prints actual values; copy resolves one field for the
	// caller's clipboard.
	shown, err := sess.Exec("reveal discord")
	if err != nil {
		log.Fatal(err)
	}
	copied, err := sess.Exec("copy discord pass")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(shown.Lines[0])
	fmt.Println(copied.Value)
	// Output:
	// 'discord' pass='hunter2'
	// hunter2
}
