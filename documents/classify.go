package documents

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"contractimport/normalization"
)

// DocType is the filename-derived document category.
type DocType string

const (
	DocBillOfLading        DocType = "bill_of_lading"
	DocPackingList         DocType = "packing_list"
	DocCertificateOfOrigin DocType = "certificate_of_origin"
	DocInvoice             DocType = "invoice"
	DocOther               DocType = "other"
)

type docRule struct {
	docType DocType
	latin   []string // stemmed phrases, matched on token boundaries
	arabic  []string // normalized phrases
}

var (
	stemmer = normalization.NewEnglishStemmer()
	fuzzy   = normalization.NewFuzzyAlgorithms()
)

// docRules are checked in order; the first hit wins.
var docRules = buildRules([]struct {
	docType DocType
	latin   []string
	arabic  []string
}{
	{DocBillOfLading, []string{"bill of lading", "bill lading", "bl", "b l", "bol", "lading"}, []string{"بوليصة", "بوليصة شحن"}},
	{DocPackingList, []string{"packing list", "packing", "pl", "p l"}, []string{"قائمة التعبئة", "تعبئة", "قائمة تعبئة"}},
	{DocCertificateOfOrigin, []string{"certificate of origin", "origin", "coo", "c o"}, []string{"شهادة منشأ", "منشأ", "شهادة المنشأ"}},
	{DocInvoice, []string{"invoice", "inv", "proforma", "commercial invoice"}, []string{"فاتورة", "فاتوره"}},
})

func buildRules(specs []struct {
	docType DocType
	latin   []string
	arabic  []string
}) []docRule {
	rules := make([]docRule, 0, len(specs))
	for _, s := range specs {
		r := docRule{docType: s.docType}
		for _, p := range s.latin {
			r.latin = append(r.latin, stemPhrase(p))
		}
		for _, p := range s.arabic {
			r.arabic = append(r.arabic, normalization.NormalizeName(p))
		}
		rules = append(rules, r)
	}
	return rules
}

func stemPhrase(text string) string {
	tokens := fuzzy.Tokens(normalization.NormalizeName(text))
	return " " + strings.Join(stemmer.StemTokens(tokens), " ") + " "
}

// Classify derives the document type from the file name alone.
func Classify(filename string) DocType {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	normalized := normalization.NormalizeName(base)
	if normalized == "" {
		return DocOther
	}
	stemmed := stemPhrase(normalized)
	padded := " " + normalized + " "

	for _, r := range docRules {
		for _, p := range r.latin {
			if strings.Contains(stemmed, p) {
				return r.docType
			}
		}
		for _, p := range r.arabic {
			if strings.Contains(padded, p) {
				return r.docType
			}
		}
	}
	return DocOther
}

// IsEligible reports whether the file should be linked: a .pdf extension,
// or PDF content under another extension.
func IsEligible(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return true
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return mt.Is("application/pdf")
}
