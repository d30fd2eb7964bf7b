package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/picsearch/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		ID:        "0b8f7f61-4d3c-4d1e-9f0e-1b7f0c3a2d11",
		Query:     "Two cats",
		QueryTime: 42,
		Total:     2,
		Results: []*models.ResultItem{
			{Rank: 1, Index: 4, Name: "cat.jpg", URL: "/photos/cat.jpg", Score: 0.8732, Label: "87.32%", Format: "jpeg", Width: 640, Height: 480},
			{Rank: 2, Index: 0, Name: "plane.jpg", Path: "/data/photos/plane.jpg", Score: 0.5, Label: "50.00%", Format: "jpeg", Width: 800, Height: 600},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != response.Query || decoded.QueryTime != response.QueryTime || decoded.ID != response.ID {
		t.Errorf("decoded header mismatch: %+v", decoded)
	}
	if len(decoded.Results) != 2 || decoded.Results[0].Label != "87.32%" {
		t.Errorf("decoded results: %+v", decoded.Results)
	}
	if decoded.Results[1].Path != "" {
		t.Error("path should not be serialized")
	}
}

func TestWriteSearchResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	want := "87.32%\tcat.jpg\n50.00%\tplane.jpg\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"Two cats"`, "87.32%", "cat.jpg", "/photos/cat.jpg", "/data/photos/plane.jpg", "640x480"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "cat.jpg") > strings.Index(out, "plane.jpg") {
		t.Error("results should keep rank order")
	}
}

func TestWriteSearchResults_TextEmpty(t *testing.T) {
	var buf bytes.Buffer
	resp := &models.SearchResponse{Query: "anything", Results: []*models.ResultItem{}}
	if err := WriteSearchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no photos") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchOutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
