package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCrawlTarget_Validate(t *testing.T) {
	tests := []struct {
		name    string
		target  CrawlTarget
		wantErr bool
	}{
		{
			name: "valid",
			target: CrawlTarget{
				Seeds:    []string{"https://example.edu"},
				MaxDepth: 2,
				MaxPages: 50,
			},
			wantErr: false,
		},
		{
			name:    "no seeds",
			target:  CrawlTarget{MaxDepth: 1, MaxPages: 10},
			wantErr: true,
		},
		{
			name: "negative depth",
			target: CrawlTarget{
				Seeds:    []string{"https://example.edu"},
				MaxDepth: -1,
				MaxPages: 10,
			},
			wantErr: true,
		},
		{
			name: "zero pages",
			target: CrawlTarget{
				Seeds:    []string{"https://example.edu"},
				MaxDepth: 1,
				MaxPages: 0,
			},
			wantErr: true,
		},
		{
			name: "depth zero is allowed",
			target: CrawlTarget{
				Seeds:    []string{"https://example.edu"},
				MaxDepth: 0,
				MaxPages: 1,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInferSourceType(t *testing.T) {
	tests := []struct {
		url   string
		title string
		want  SourceType
	}{
		{"https://example.edu/library/hours", "", SourceTypeLibrary},
		{"https://knjiznica.example.hr", "Knjižnica", SourceTypeLibrary},
		{"https://example.edu/admissions", "Apply now", SourceTypeAdmissions},
		{"https://example.hr/upisi", "", SourceTypeAdmissions},
		{"https://example.edu/cs", "Department of Computer Science", SourceTypeDepartment},
		{"https://example.edu/page", "Faculty of Engineering", SourceTypeFaculty},
		{"https://example.edu/news/2024", "Campus news", SourceTypeWeb},
		{"", "", SourceTypeWeb},
	}

	for _, tt := range tests {
		t.Run(tt.url+tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, InferSourceType(tt.url, tt.title))
		})
	}
}

func TestCrawledDocument_ContentLength(t *testing.T) {
	doc := CrawledDocument{
		URL:       "https://example.edu",
		Content:   "hello world",
		CrawledAt: time.Now(),
	}
	assert.Equal(t, 11, doc.ContentLength())
}
