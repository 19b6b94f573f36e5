// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ctlfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadLine returns the first line of path without its trailing newline.
// An empty file yields an empty string.
func ReadLine(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", &IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", &IOError{Op: "read", Path: path, Err: err}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadInt reads the first line of path as a single base-10 integer.
// Surrounding whitespace is ignored.
func ReadInt(path string) (int64, error) {
	line, err := ReadLine(path)
	if err != nil {
		return 0, err
	}
	return parseInt(path, strings.TrimSpace(line))
}

// ReadIntList reads the whitespace-separated integers on the first line
// of path. More than maxCount values is a *RangeError.
func ReadIntList(path string, maxCount int) ([]int64, error) {
	line, err := ReadLine(path)
	if err != nil {
		return nil, err
	}
	return ParseIntList(path, line, maxCount)
}

// ParseIntList parses whitespace-separated integers from line. source
// names where line came from and is used only in errors.
func ParseIntList(source, line string, maxCount int) ([]int64, error) {
	tokens := strings.Fields(line)
	if len(tokens) > maxCount {
		return nil, &RangeError{Path: source, Count: len(tokens), Max: maxCount}
	}
	values := make([]int64, 0, len(tokens))
	for _, token := range tokens {
		value, err := parseInt(source, token)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// WriteLine formats the arguments, appends a newline, and writes the
// result to path in a single write.
func WriteLine(path, format string, args ...any) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	line := fmt.Sprintf(format, args...) + "\n"
	if _, err := file.WriteString(line); err != nil {
		file.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func parseInt(source, token string) (int64, error) {
	value, err := strconv.ParseInt(token, 10, 64)
	if err == nil {
		return value, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, &RangeError{Path: source, Token: token}
	}
	return 0, &ParseError{Path: source, Token: token}
}
