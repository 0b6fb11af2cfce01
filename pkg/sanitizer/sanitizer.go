package sanitizer

import (
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func NormalizeUsername(input string) string {
	p := Pipeline{
		trimAndLower,
	}
	return p.Apply(input)
}

func NormalizeEmail(input string) string {
	p := Pipeline{
		trimAndLower,
	}
	return p.Apply(input)
}
