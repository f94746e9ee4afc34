package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/term"

	"pydock"
)

// PromptUser returns a choice callback that reads a single key from the
// terminal. The first letter of each option selects it, case-insensitive.
// Ctrl+C aborts the choice.
func PromptUser(allowEscapeSequences bool) pydock.RequestChoice {
	return func(request string, options []string, cleanup bool) (choice string) {
		letterToChoice := make(map[rune]string)
		var displayOptions []string
		for _, option := range options {
			letter := unicode.ToLower(rune(option[0]))
			if _, taken := letterToChoice[letter]; taken {
				continue
			}
			letterToChoice[letter] = option
			highlighted := fmt.Sprintf("[%c]%s", option[0], option[1:])
			if allowEscapeSequences {
				highlighted = fmt.Sprintf("\x1B[1m\x1B[4m%c\x1B[0m%s", option[0], option[1:])
			}
			displayOptions = append(displayOptions, highlighted)
		}

		prompt := fmt.Sprintf("%s (%s): ", request, strings.Join(displayOptions, " / "))
		fmt.Fprint(os.Stdout, prompt)

		rawMode := false
		if allowEscapeSequences {
			if oldTermState, err := term.MakeRaw(int(os.Stdin.Fd())); err == nil {
				rawMode = true
				defer term.Restore(int(os.Stdin.Fd()), oldTermState)
			} //else ENTER is required to confirm input, an acceptable fallback
		}

		reader := bufio.NewReader(os.Stdin)
		for {
			input, err := reader.ReadByte()
			if err != nil {
				fmt.Fprint(os.Stdout, "<CANCELLED>\r\n")
				return pydock.ChoiceAborted
			}
			if rawMode && input == 3 { //Ctrl+C
				fmt.Fprint(os.Stdout, "<CANCELLED>\r\n")
				return pydock.ChoiceAborted
			}
			if selection, found := letterToChoice[unicode.ToLower(rune(input))]; found {
				if rawMode {
					if cleanup {
						fmt.Fprint(os.Stdout, "\033[2K\r") //clear prompt line
					} else {
						fmt.Fprintf(os.Stdout, "%c\r\n", unicode.ToUpper(rune(input)))
					}
				}
				return selection
			}
			if rawMode {
				fmt.Fprint(os.Stdout, "\a") //bell on unknown key
			} else {
				fmt.Fprint(os.Stdout, prompt)
			}
		}
	}
}

// AutoChooseDefaultOption implements the non-interactive mode: every question
// is answered with its first (default) option.
func AutoChooseDefaultOption(quiet bool) pydock.RequestChoice {
	return func(request string, options []string, cleanup bool) string {
		defaultChoice := options[0] //by definition of type RequestChoice
		if !cleanup && !quiet {
			fmt.Fprintf(os.Stdout, "%s => [%s]\n", request, strings.ToUpper(defaultChoice))
		}
		return defaultChoice
	}
}
