package service

import (
	"fmt"
	"regexp"
)

// usernamePattern mirrors the classic username rule: letters, digits and
// @/./+/-/_ only.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9@.+\-_]+$`)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func validateUsername(prohibited map[string]bool, username string) FieldErrors {
	if len(username) > 150 {
		return FieldErrors{"username": {"Ensure this field has no more than 150 characters."}}
	}
	if !usernamePattern.MatchString(username) {
		return FieldErrors{"username": {"Enter a valid username. Letters, digits and @/./+/-/_ only."}}
	}
	if prohibited[username] {
		return FieldErrors{"username": {fmt.Sprintf("%s username is prohibited!", username)}}
	}
	return nil
}

func validateSlug(slug string) FieldErrors {
	if !slugPattern.MatchString(slug) {
		return FieldErrors{"slug": {"Enter a valid slug. Letters, digits, hyphens and underscores only."}}
	}
	return nil
}
