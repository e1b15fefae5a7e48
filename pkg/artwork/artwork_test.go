package artwork

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodePage(t *testing.T) {
	body := []byte(`{
		"pagination": {"total": 129884, "limit": 2, "offset": 0, "total_pages": 64942, "current_page": 1},
		"data": [
			{"id": 1, "title": "Water Lilies", "place_of_origin": "France", "artist_display": "Claude Monet", "inscriptions": null, "date_start": 1906, "date_end": 1906, "image_id": "x"},
			{"id": 2, "title": "Untitled", "place_of_origin": null, "artist_display": "Unknown", "inscriptions": "signed", "date_start": null, "date_end": null}
		]
	}`)

	page, err := DecodePage(body, 0, 2)
	if err != nil {
		t.Fatalf("DecodePage() error = %v", err)
	}

	want := []Record{
		{Title: "Water Lilies", PlaceOfOrigin: "France", ArtistDisplay: "Claude Monet", DateStart: Year(1906), DateEnd: Year(1906)},
		{Title: "Untitled", ArtistDisplay: "Unknown", Inscriptions: "signed"},
	}
	if diff := cmp.Diff(want, page.Records); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
	if page.Total != 129884 {
		t.Errorf("Total = %d, want 129884", page.Total)
	}
	if page.Index != 0 || page.Limit != 2 {
		t.Errorf("Index/Limit = %d/%d, want 0/2", page.Index, page.Limit)
	}
}

func TestDecodePage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "missing data", body: `{"pagination": {"total": 3}}`, wantErr: ErrMissingData},
		{name: "null data", body: `{"data": null, "pagination": {"total": 3}}`, wantErr: ErrMissingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePage([]byte(tt.body), 0, 5)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodePage_EmptyData(t *testing.T) {
	page, err := DecodePage([]byte(`{"data": [], "pagination": {"total": 10}}`), 4, 5)
	if err != nil {
		t.Fatalf("DecodePage() error = %v", err)
	}
	if len(page.Records) != 0 {
		t.Errorf("len(Records) = %d, want 0", len(page.Records))
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 5, 0},
		{5, 5, 1},
		{6, 5, 2},
		{129884, 12, 10824},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.size); got != tt.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestRecordKey(t *testing.T) {
	a := Record{Title: "Untitled", ArtistDisplay: "A"}
	b := Record{Title: "Untitled", ArtistDisplay: "B"}
	if a.Key() != b.Key() {
		t.Error("records with the same title should share a key")
	}
}

func TestDecodePage_YearZeroIsNotMissing(t *testing.T) {
	body := []byte(`{"pagination": {"total": 2}, "data": [
		{"title": "Dated", "date_start": 0, "date_end": 0},
		{"title": "Undated", "date_start": null}
	]}`)

	page, err := DecodePage(body, 0, 2)
	if err != nil {
		t.Fatalf("DecodePage() error = %v", err)
	}

	dated, undated := page.Records[0], page.Records[1]
	if dated.DateStart == nil || *dated.DateStart != 0 || dated.DateEnd == nil {
		t.Errorf("year 0 should decode as a present date, got %v/%v", dated.DateStart, dated.DateEnd)
	}
	if undated.DateStart != nil || undated.DateEnd != nil {
		t.Errorf("null and absent dates should decode as nil, got %v/%v", undated.DateStart, undated.DateEnd)
	}
}

func TestFormatYear(t *testing.T) {
	tests := []struct {
		name string
		year *int
		want string
	}{
		{name: "missing", year: nil, want: "-"},
		{name: "zero", year: Year(0), want: "0"},
		{name: "bce", year: Year(-200), want: "-200"},
		{name: "ce", year: Year(1906), want: "1906"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatYear(tt.year); got != tt.want {
				t.Errorf("FormatYear() = %q, want %q", got, tt.want)
			}
		})
	}
}
