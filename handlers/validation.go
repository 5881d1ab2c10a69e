package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxUsername = 50
	// bcrypt only looks at the first 72 bytes
	maxPassword = 72
	maxContent  = 1000
	maxImage    = 2048
)

func ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return validationError{"Username cannot be empty"}
	}
	if utf8.RuneCountInString(username) > maxUsername {
		return validationError{fmt.Sprintf("Username cannot be longer than %d characters", maxUsername)}
	}
	if password == "" {
		return validationError{"Password cannot be empty"}
	}
	if len(password) > maxPassword {
		return validationError{fmt.Sprintf("Password cannot be longer than %d bytes", maxPassword)}
	}
	return nil
}

func ValidatePost(content, image string) error {
	if err := validateText("Content", content); err != nil {
		return err
	}
	if len(image) > maxImage {
		return validationError{fmt.Sprintf("Image cannot be longer than %d characters", maxImage)}
	}
	return nil
}

func ValidateComment(content string) error {
	return validateText("Comment", content)
}

func validateText(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return validationError{field + " cannot be empty"}
	}
	if utf8.RuneCountInString(s) > maxContent {
		return validationError{fmt.Sprintf("%s cannot be longer than %d characters", field, maxContent)}
	}
	return nil
}
