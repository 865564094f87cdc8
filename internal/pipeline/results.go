package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToJSON renders the result as indented JSON.
func ToJSON(res *Result) ([]byte, error) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result as JSON: %w", err)
	}
	return out, nil
}

// ToYAML renders the result as YAML.
func ToYAML(res *Result) ([]byte, error) {
	out, err := yaml.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encoding result as YAML: %w", err)
	}
	return out, nil
}

// ToText renders a human-readable summary for terminal output.
func ToText(res *Result) []byte {
	var b strings.Builder

	if res.StoreInfo != nil {
		fmt.Fprintf(&b, "Store: %s (%.0f%%)\n", res.StoreInfo.Name, res.StoreInfo.Confidence)
	}
	fmt.Fprintf(&b, "Items detected: %d\n", res.TotalItemsDetected)
	fmt.Fprintf(&b, "OCR confidence: %.1f%%\n", res.OCRConfidence)
	if res.TotalAmount != nil {
		fmt.Fprintf(&b, "Receipt total: %.2f\n", *res.TotalAmount)
	}
	b.WriteString("\n")

	for i, item := range res.DetectedItems {
		fmt.Fprintf(&b, "%2d. %s", i+1, item.Name)
		if item.Quantity != nil && item.Unit != nil {
			fmt.Fprintf(&b, " (%g %s)", *item.Quantity, *item.Unit)
		}
		if item.Price != nil {
			fmt.Fprintf(&b, " @ %.2f", *item.Price)
		}
		fmt.Fprintf(&b, " [%.0f%%]\n", item.Confidence)
		for _, s := range item.Suggestions {
			fmt.Fprintf(&b, "      %s %-24s %.1f (%s)\n", "->", s.Name, s.Confidence, s.MatchType)
		}
	}

	fmt.Fprintf(&b, "\nProcessed in %dms\n", res.ProcessingTimeMs)
	return []byte(b.String())
}
