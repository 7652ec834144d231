package util

import (
	"os"
	"path/filepath"
)

// WriteToFile writes the given strings to the file separated by new lines,
// creating parent directories as needed
func WriteToFile(savePath string, content ...string) error {
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return err
	}
	singleString := ""
	for _, c := range content {
		singleString = singleString + c + "\n"
	}
	return os.WriteFile(savePath, []byte(singleString), 0644)
}

// AppendToFile appends the given strings to the file separated by new lines
func AppendToFile(savePath string, content ...string) error {
	if err := os.MkdirAll(filepath.Dir(savePath), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return nil
}
