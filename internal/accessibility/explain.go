package accessibility

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultLanguage is used when a language has no phrase table of its own
const DefaultLanguage = "en-IN"

var explanations = map[string]map[string]string{
	"en-IN": {
		"dashboard":        "Dashboard page shows your financial overview including income, expenses, and savings.",
		"transactions":     "Transactions page shows your recent financial activities.",
		"budget":           "Budget page helps you plan and track your spending.",
		"scan":             "Scan page allows you to scan receipts using your camera.",
		"settings":         "Settings page lets you customize the app according to your preferences.",
		"receipt_upload":   "Here you can upload a receipt image for processing.",
		"receipt_details":  "These are the details read from your receipt.",
		"transaction_form": "This form allows you to enter transaction details manually.",
		"chart":            "This chart shows your financial data graphically.",
		"balance":          "This shows your current account balance.",
		"income":           "This shows your income for the selected period.",
		"expenses":         "This shows your expenses for the selected period.",
		"savings":          "This shows your savings for the selected period.",
		"merchant":         "This shows the shop or company that issued the receipt.",
		"date":             "This shows the date printed on the receipt.",
		"total":            "This shows the total amount paid.",
		"category":         "This shows the spending category assigned to the receipt.",
	},
	"hi-IN": {
		"dashboard":        "डैशबोर्ड पेज आपके वित्तीय अवलोकन को दिखाता है, जिसमें आय, व्यय और बचत शामिल हैं।",
		"transactions":     "लेनदेन पेज आपकी हाल की वित्तीय गतिविधियों को दिखाता है।",
		"budget":           "बजट पेज आपको अपने खर्च की योजना बनाने और ट्रैक करने में मदद करता है।",
		"scan":             "स्कैन पेज आपको अपने कैमरे का उपयोग करके रसीदें स्कैन करने की अनुमति देता है।",
		"settings":         "सेटिंग्स पेज आपको अपनी प्राथमिकताओं के अनुसार ऐप को अनुकूलित करने देता है।",
		"receipt_upload":   "यहां आप प्रोसेसिंग के लिए रसीद इमेज अपलोड कर सकते हैं।",
		"receipt_details":  "ये आपकी रसीद से पढ़े गए विवरण हैं।",
		"transaction_form": "यह फॉर्म आपको मैन्युअल रूप से लेनदेन विवरण दर्ज करने की अनुमति देता है।",
		"chart":            "यह चार्ट आपके वित्तीय डेटा को ग्राफिक रूप से दिखाता है।",
		"balance":          "यह आपका वर्तमान खाता शेष दिखाता है।",
		"income":           "यह चयनित अवधि के लिए आपकी आय दिखाता है।",
		"expenses":         "यह चयनित अवधि के लिए आपके खर्च दिखाता है।",
		"savings":          "यह चयनित अवधि के लिए आपकी बचत दिखाता है।",
		"merchant":         "यह रसीद जारी करने वाली दुकान या कंपनी दिखाता है।",
		"date":             "यह रसीद पर छपी तारीख दिखाता है।",
		"total":            "यह भुगतान की गई कुल राशि दिखाता है।",
		"category":         "यह रसीद को दी गई खर्च श्रेणी दिखाता है।",
	},
}

// NormalizeLanguage turns "hi" into "hi-IN" and leaves full tags alone
func NormalizeLanguage(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return DefaultLanguage
	}
	if !strings.Contains(language, "-") {
		return strings.ToLower(language) + "-IN"
	}
	return language
}

// Explanation returns the spoken description of a UI element
func Explanation(elementID, language string) string {
	table, ok := explanations[NormalizeLanguage(language)]
	if !ok {
		table = explanations[DefaultLanguage]
	}
	if text, ok := table[elementID]; ok {
		return text
	}
	return fmt.Sprintf("No explanation available for %s", elementID)
}

// Explainer speaks UI element explanations
type Explainer struct {
	speaker Speaker

	mu       sync.RWMutex
	language string
}

// NewExplainer creates an Explainer with a default language
func NewExplainer(speaker Speaker, language string) *Explainer {
	return &Explainer{speaker: speaker, language: NormalizeLanguage(language)}
}

// SetLanguage changes the language used when a call doesn't name one
func (e *Explainer) SetLanguage(language string) {
	e.mu.Lock()
	e.language = NormalizeLanguage(language)
	e.mu.Unlock()
}

// Language returns the default language
func (e *Explainer) Language() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.language
}

func (e *Explainer) resolve(language string) string {
	if language == "" {
		return e.Language()
	}
	return NormalizeLanguage(language)
}

// Speak reads arbitrary text aloud
func (e *Explainer) Speak(ctx context.Context, text, language string) error {
	if err := e.speaker.Speak(ctx, text, e.resolve(language)); err != nil {
		return fmt.Errorf("speaking text: %w", err)
	}
	return nil
}

// Explain speaks the explanation of one element
func (e *Explainer) Explain(ctx context.Context, elementID, language string) error {
	language = e.resolve(language)
	return e.Speak(ctx, Explanation(elementID, language), language)
}

// ExplainScreen explains a screen and then each of its elements in order.
// Every element is attempted; failures are joined.
func (e *Explainer) ExplainScreen(ctx context.Context, screenID string, elements []string, language string) error {
	language = e.resolve(language)
	errs := []error{e.Explain(ctx, screenID, language)}
	for _, element := range elements {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		errs = append(errs, e.Explain(ctx, element, language))
	}
	return errors.Join(errs...)
}
