package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/podsight/podsight/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// storedDateLayout is the one format the ingestion side actually writes for
// string dates, e.g. "01 January 2023 at 10:00:00 UTC+0000".
const storedDateLayout = "02 January 2006 at 15:04:05 MST-0700"

var (
	nameSeparators = regexp.MustCompile(`[\s_]+`)
	topicStopWords = regexp.MustCompile(`(?i)["“”]|podcast|or|discussion|interview`)
)

// FormatGuestName turns a stored guest key like "elon_musk" into "Elon Musk".
// Runs of whitespace and underscores collapse to a single space, then each
// word is title-cased. Empty input stays empty.
func FormatGuestName(raw string) string {
	cleaned := strings.TrimSpace(nameSeparators.ReplaceAllString(raw, " "))
	if cleaned == "" {
		return ""
	}

	words := strings.Split(cleaned, " ")
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ProcessTopics normalizes the stored topics field into a flat word list.
// The field arrives either as an actual sequence of topic phrases or as a
// string holding a literal-encoded sequence; the string form goes through the
// restricted literal decoder. Each phrase is stripped of quotation marks and
// filler words, split into words, and the whole list is deduplicated
// preserving first-seen order and casing.
func ProcessTopics(raw interface{}) ([]string, error) {
	phrases, err := topicPhrases(raw)
	if err != nil {
		return nil, err
	}

	words := []string{}
	seen := map[string]bool{}
	for _, phrase := range phrases {
		cleaned := topicStopWords.ReplaceAllString(phrase, "")
		for _, word := range strings.Fields(cleaned) {
			if seen[word] {
				continue
			}
			seen[word] = true
			words = append(words, word)
		}
	}
	return words, nil
}

func topicPhrases(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return decodeTopicList(v)
	case []string:
		return v, nil
	case []interface{}:
		return stringifyPhrases(v)
	case primitive.A:
		return stringifyPhrases(v)
	default:
		return nil, &MalformedTopicsError{Reason: fmt.Sprintf("unsupported topics type %T", raw)}
	}
}

func stringifyPhrases(items []interface{}) ([]string, error) {
	phrases := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			phrases = append(phrases, v)
		case int, int32, int64, float32, float64:
			phrases = append(phrases, fmt.Sprint(v))
		default:
			return nil, &MalformedTopicsError{Reason: fmt.Sprintf("unsupported topic element type %T", item)}
		}
	}
	return phrases, nil
}

// FormatDate canonicalizes whatever shape the most_recent_date field was
// persisted in. Already-canonical wrappers pass through, strings are parsed
// against the one known ingestion format, and parse failure keeps the original
// string rather than erroring. Anything else is rendered as ISO-8601 when it
// is a timestamp and as plain text otherwise.
func FormatDate(raw interface{}) models.DateValue {
	switch v := raw.(type) {
	case models.DateValue:
		return v
	case models.RawDocument:
		return wrappedDate(map[string]interface{}(v), raw)
	case bson.M:
		return wrappedDate(map[string]interface{}(v), raw)
	case map[string]interface{}:
		return wrappedDate(v, raw)
	case string:
		if parsed, err := time.Parse(storedDateLayout, v); err == nil {
			return models.DateValue{Date: parsed.Format(time.RFC3339)}
		}
		return models.DateValue{Date: v}
	case time.Time:
		return models.DateValue{Date: v.Format(time.RFC3339)}
	case primitive.DateTime:
		return models.DateValue{Date: v.Time().UTC().Format(time.RFC3339)}
	case nil:
		return models.DateValue{}
	default:
		return models.DateValue{Date: fmt.Sprint(v)}
	}
}

func wrappedDate(m map[string]interface{}, raw interface{}) models.DateValue {
	if inner, ok := m["$date"]; ok {
		if s, ok := inner.(string); ok {
			return models.DateValue{Date: s}
		}
		return FormatDate(inner)
	}
	return models.DateValue{Date: fmt.Sprint(raw)}
}
