package admin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophaccount/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

// getPassword prints prompt to w and reads a password from the terminal
// without echo. The caller wipes the returned slice.
func getPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// getNewPassword asks for a password twice and returns it once both
// entries agree.
func getNewPassword(w io.Writer) (string, error) {
	first, err := getPassword(w, "New password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	second, err := getPassword(w, "Repeat password: ")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if !bytes.Equal(first, second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}
