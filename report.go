package mdreport

import (
	"html/template"
	"time"

	"github.com/alnah/go-mdreport/internal/dateutil"
	"github.com/alnah/go-mdreport/internal/pipeline"
)

// Fixed file names, resolved against the working (or -C) directory.
const (
	InputFileName  = "ETL_Production_Deployment_Lessons_Learned.md"
	OutputFileName = "ETL_Production_Deployment_Lessons_Learned.pdf"
)

// Report is the metadata stamped on every generated document.
type Report struct {
	Lang          string
	Title         string // <title> and PDF title
	RunningHeader string // top of every page
	Heading       string // cover h1
	Subtitle      string // cover h2
	Author        string
	Organization  string
	Subject       string
	Keywords      string
	Creator       string
	Producer      string
	Project       string // footer block
	Status        string // footer block
}

// DefaultReport returns the ETL deployment report metadata.
func DefaultReport() Report {
	return Report{
		Lang:          "pt-BR",
		Title:         "ETL Production Deployment - Lessons Learned",
		RunningHeader: "ETL Production Deployment - Lessons Learned",
		Heading:       "🚀 ETL System Production Deployment",
		Subtitle:      "Lessons Learned & Solutions Documentation",
		Author:        "BRQ Itaú - ETL Team",
		Organization:  "BRQ Itaú - ETL Team",
		Subject:       "Production Deployment Documentation",
		Keywords:      "ETL, AWS, EKS, MSK, Spring Boot, Kubernetes, Fargate, EC2",
		Creator:       "ETL Documentation Generator",
		Producer:      "mdreport",
		Project:       "ETL System - BRQ Itaú | Stack: Spring Boot 3.2.2 + Kotlin + AWS EKS + MSK",
		Status:        "✅ Production Operational",
	}
}

// documentData fills the document shell for a report generated at now.
func (r Report) documentData(now time.Time, body string) *pipeline.DocumentData {
	return &pipeline.DocumentData{
		Lang:           r.Lang,
		Title:          r.Title,
		Author:         r.Author,
		Subject:        r.Subject,
		Keywords:       r.Keywords,
		Creator:        r.Creator,
		Producer:       r.Producer,
		CreatedISO:     now.Format(time.RFC3339),
		Heading:        r.Heading,
		Subtitle:       r.Subtitle,
		Organization:   r.Organization,
		GeneratedStamp: dateutil.MustFormat(now, dateutil.StampLayout),
		GeneratedLong:  dateutil.MustFormat(now, dateutil.LongLayout),
		Project:        r.Project,
		Status:         r.Status,
		// #nosec G203 -- body is goldmark output after the DOM passes
		Body: template.HTML(body),
	}
}

// metadata returns the PDF info dictionary values.
func (r Report) metadata(now time.Time) pdfMetadata {
	return pdfMetadata{
		Title:    r.Title,
		Author:   r.Author,
		Subject:  r.Subject,
		Keywords: r.Keywords,
		Creator:  r.Creator,
		Producer: r.Producer,
		Created:  now,
	}
}
