package metadata

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadTitles reads a newline-delimited titles file, skipping blank lines.
// A missing path yields an empty pool rather than an error so the fallback
// title simply degrades to the default.
func LoadTitles(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open titles file: %w", err)
	}
	defer file.Close()

	var titles []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			titles = append(titles, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read titles file: %w", err)
	}
	return titles, nil
}

// LoadTemplate reads the description template file. A missing path or file
// yields an empty template.
func LoadTemplate(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read description template: %w", err)
	}
	return strings.TrimRight(string(content), "\n"), nil
}
