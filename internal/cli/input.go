package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/gradekeeper/internal/services"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a password from the user's
// terminal without echo. A newline is printed after the read to keep the UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
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

// GetGrade asks for a grade until the answer is a number in the accepted
// range. It only fails on a read error.
func GetGrade(reader *bufio.Reader, w io.Writer) (float32, error) {
	for {
		s, err := GetSimpleText(reader, fmt.Sprintf("Enter the grade (%g-%g)", services.MinGrade, services.MaxGrade), w)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			fmt.Fprintln(w, "Not a number, try again.")
			continue
		}
		grade := float32(v)
		if err := services.ValidateGrade(grade); err != nil {
			fmt.Fprintln(w, "Out of range, try again.")
			continue
		}
		return grade, nil
	}
}
