package model

import "testing"

func TestApplicationStatusIsTerminal(t *testing.T) {
	if StatusPending.IsTerminal() {
		t.Error("PENDING must not be terminal")
	}
	if !StatusValidated.IsTerminal() {
		t.Error("VALIDATED must be terminal")
	}
	if !StatusRejected.IsTerminal() {
		t.Error("REJECTED must be terminal")
	}
}

func TestHasAllRequiredDocuments(t *testing.T) {
	app := Application{Number: "CAND-20260315-A1B2"}

	if app.HasAllRequiredDocuments() {
		t.Error("application without documents must not be complete")
	}

	app.Documents = []Document{
		{Kind: DocumentKindCV, Size: 1000},
		{Kind: DocumentKindNationalID, Size: 500},
	}
	if app.HasAllRequiredDocuments() {
		t.Error("application missing the diploma must not be complete")
	}

	app.Documents = append(app.Documents, Document{Kind: DocumentKindDiploma, Size: 2000})
	if !app.HasAllRequiredDocuments() {
		t.Error("application with CV, CIN and diploma must be complete")
	}

	if app.TotalDocumentSize() != 3500 {
		t.Errorf("expected total size 3500, got %d", app.TotalDocumentSize())
	}
}

func TestDocumentFormattedSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tc := range cases {
		d := Document{Size: tc.size}
		if got := d.FormattedSize(); got != tc.want {
			t.Errorf("FormattedSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}
