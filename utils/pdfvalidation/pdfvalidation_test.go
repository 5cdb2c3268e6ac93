package pdfvalidation

import (
	"testing"

	"github.com/concours-mef/api/model"
)

func TestLimitsForKind(t *testing.T) {
	if LimitsForKind(model.DocumentKindCV) != CVLimits {
		t.Error("expected CV limits for CV kind")
	}
	if LimitsForKind(model.DocumentKindNationalID) != IdentityLimits {
		t.Error("expected identity limits for CIN kind")
	}
	if LimitsForKind(model.DocumentKindDiploma) != DiplomaLimits {
		t.Error("expected diploma limits for diploma kind")
	}
	if LimitsForKind("UNKNOWN") != DefaultLimits {
		t.Error("expected default limits for unknown kind")
	}
}

func TestValidatePDFBytesRejectsNonPDF(t *testing.T) {
	result, err := ValidatePDFBytes([]byte("not a pdf"), DefaultLimits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid {
		t.Error("expected validation to fail for a non-PDF payload")
	}
	if result.Error == "" {
		t.Error("expected an error message")
	}
}

func TestValidatePDFBytesRejectsOversize(t *testing.T) {
	content := make([]byte, (IdentityLimits.MaxFileSizeMB+1)*1024*1024)
	copy(content, []byte("%PDF-1.4\n"))

	result, err := ValidatePDFBytes(content, IdentityLimits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid {
		t.Error("expected validation to fail for an oversize file")
	}
}

func TestSanitizePDFStripsTrailingGarbage(t *testing.T) {
	content := []byte("%PDF-1.4\nbody\n%%EOF\n\x00\x00garbage")
	cleaned := sanitizePDF(content)

	want := "%PDF-1.4\nbody\n%%EOF\n"
	if string(cleaned) != want {
		t.Errorf("sanitizePDF = %q, want %q", cleaned, want)
	}

	// Content without trailing garbage is untouched
	exact := []byte("%PDF-1.4\nbody\n%%EOF")
	if string(sanitizePDF(exact)) != string(exact) {
		t.Error("expected clean content to pass through unchanged")
	}
}
