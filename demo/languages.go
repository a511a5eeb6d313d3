// Author: KleaSCM
// Email: KleaSCM@gmail.com
// File: languages.go
// Description: Built-in target languages for the mining demo. Each predicate plays the role of a black-box oracle over a small language with real structure to discover.

package main

import "strings"

// isArithmetic accepts sums of nonnegative integers, like "1+1" and "23+4"
func isArithmetic(s string) bool {
	if s == "" {
		return false
	}
	for _, term := range strings.Split(s, "+") {
		if term == "" {
			return false
		}
		for i := 0; i < len(term); i++ {
			if term[i] < '0' || term[i] > '9' {
				return false
			}
		}
	}
	return true
}

// isBalanced accepts nonempty balanced parenthesis strings, like "()" and "(()())"
func isBalanced(s string) bool {
	if s == "" {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		default:
			return false
		}
	}
	return depth == 0
}

// isKeyValueList accepts semicolon-separated a=N assignments, like "a=1;b=2"
func isKeyValueList(s string) bool {
	if s == "" {
		return false
	}
	for _, pair := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || len(k) != 1 || k[0] < 'a' || k[0] > 'z' {
			return false
		}
		if v == "" {
			return false
		}
		for i := 0; i < len(v); i++ {
			if v[i] < '0' || v[i] > '9' {
				return false
			}
		}
	}
	return true
}
