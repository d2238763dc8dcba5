package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"smart-pantry/internal/search"
)

var errBadArgs = errors.New("invalid arguments")

// quickCookMinutes is the limit applied by the "quick" keyword of /cook.
const quickCookMinutes = 30

// parseIndex converts a 1-based list number into an index below n.
func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		if n == 0 {
			return 0, fmt.Errorf("%w: the list is empty", errBadArgs)
		}
		return 0, fmt.Errorf("%w: expected a number between 1 and %d", errBadArgs, n)
	}
	return i - 1, nil
}

// parseNumbers reads exactly count 1-based numbers and returns them 0-based.
// Range checks are left to the caller.
func parseNumbers(args string, count int) ([]int, error) {
	fields := strings.Fields(args)
	if len(fields) != count {
		return nil, fmt.Errorf("%w: expected %d numbers", errBadArgs, count)
	}
	out := make([]int, count)
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: %q is not a list number", errBadArgs, f)
		}
		out[i] = n - 1
	}
	return out, nil
}

// splitFields splits "a | b | c" into trimmed parts.
func splitFields(args string) []string {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseCookArgs turns "/cook strict quick max=5 units=standard vegan" into a
// generative request. Unrecognised words become dietary restrictions.
func parseCookArgs(args string) (search.Request, error) {
	var req search.Request
	var restrictions []string
	for _, word := range strings.Fields(args) {
		key, value, hasValue := strings.Cut(word, "=")
		switch {
		case strings.EqualFold(word, "strict"):
			req.StrictMode = true
		case strings.EqualFold(word, "quick"):
			req.MaxCookTimeMinutes = quickCookMinutes
		case hasValue && strings.EqualFold(key, "time"):
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return req, fmt.Errorf("%w: time must be minutes, got %q", errBadArgs, value)
			}
			req.MaxCookTimeMinutes = n
		case hasValue && strings.EqualFold(key, "max"):
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return req, fmt.Errorf("%w: max must be a positive number, got %q", errBadArgs, value)
			}
			req.MaxIngredients = n
		case hasValue && strings.EqualFold(key, "units"):
			req.Measurement = search.ParseMeasurement(value)
		default:
			restrictions = append(restrictions, word)
		}
	}
	req.Restrictions = strings.Join(restrictions, " ")
	return req, nil
}

// parseRating reads "stars title | comment".
func parseRating(args string) (int, string, string, error) {
	head, comment, _ := strings.Cut(args, "|")
	starsText, title, _ := strings.Cut(strings.TrimSpace(head), " ")
	stars, err := strconv.Atoi(starsText)
	if err != nil {
		return 0, "", "", fmt.Errorf("%w: usage /rate 1-5 title | comment", errBadArgs)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, "", "", fmt.Errorf("%w: missing recipe title", errBadArgs)
	}
	return stars, title, strings.TrimSpace(comment), nil
}

func isURL(text string) bool {
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}
