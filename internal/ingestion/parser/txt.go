package parser

import "strings"

func parseTXT(data []byte) (Result, error) {
	return Result{Text: strings.ToValidUTF8(string(data), "�")}, nil
}
