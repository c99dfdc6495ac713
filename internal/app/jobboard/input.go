package jobboard

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/felix-ong/volunteer-board/internal/app/system/apperr"
	"github.com/felix-ong/volunteer-board/internal/app/system/htmlsanitize"
	"github.com/felix-ong/volunteer-board/internal/app/system/inputval"
	"github.com/felix-ong/volunteer-board/internal/app/system/normalize"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
)

const (
	maxTitleLen   = 200
	maxPurposeLen = 10000
	maxFieldLen   = 1000
	maxHours      = 10000
)

// dateLayouts are accepted for JobInput.Dates, most specific first.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// JobInput is the writable part of a job, as submitted on create and update.
// Dates are strings so plain calendar dates ("2024-05-01") are accepted
// alongside RFC 3339 timestamps.
type JobInput struct {
	Organizer    string   `json:"organizer"`
	ContactName  string   `json:"contactName"`
	TelephoneNum string   `json:"telephoneNum"`
	MobileNum    string   `json:"mobileNum"`
	Email        string   `json:"email"`
	Website      string   `json:"website"`
	Title        string   `json:"title"`
	Purpose      string   `json:"purpose"`
	Skills       string   `json:"skills"`
	Location     string   `json:"location"`
	ImageURL     string   `json:"imageUrl"`
	Categories   []string `json:"categories"`
	Suitability  []string `json:"suitability"`
	Dates        []string `json:"dates"`
	Hours        float64  `json:"hours"`
}

// JobPatch is a partial edit. Absent (nil) fields keep their stored value;
// present fields replace it, so "location": "" clears the location.
type JobPatch struct {
	Organizer    *string   `json:"organizer"`
	ContactName  *string   `json:"contactName"`
	TelephoneNum *string   `json:"telephoneNum"`
	MobileNum    *string   `json:"mobileNum"`
	Email        *string   `json:"email"`
	Website      *string   `json:"website"`
	Title        *string   `json:"title"`
	Purpose      *string   `json:"purpose"`
	Skills       *string   `json:"skills"`
	Location     *string   `json:"location"`
	ImageURL     *string   `json:"imageUrl"`
	Categories   *[]string `json:"categories"`
	Suitability  *[]string `json:"suitability"`
	Dates        *[]string `json:"dates"`
	Hours        *float64  `json:"hours"`
}

// inputOf turns a stored job back into the input that produces it.
func inputOf(j models.Job) JobInput {
	dates := make([]string, 0, len(j.Dates))
	for _, d := range j.Dates {
		dates = append(dates, d.UTC().Format(time.RFC3339Nano))
	}
	return JobInput{
		Organizer:    j.Organizer,
		ContactName:  j.ContactName,
		TelephoneNum: j.TelephoneNum,
		MobileNum:    j.MobileNum,
		Email:        j.Email,
		Website:      j.Website,
		Title:        j.Title,
		Purpose:      j.Purpose,
		Skills:       j.Skills,
		Location:     j.Location,
		ImageURL:     j.ImageURL,
		Categories:   append([]string(nil), j.Categories...),
		Suitability:  append([]string(nil), j.Suitability...),
		Dates:        dates,
		Hours:        j.Hours,
	}
}

// applyTo merges p over cur. A blank organizer keeps the current one.
func (p JobPatch) applyTo(cur models.Job) JobInput {
	in := inputOf(cur)
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	if p.Organizer != nil && strings.TrimSpace(*p.Organizer) != "" {
		in.Organizer = *p.Organizer
	}
	set(&in.ContactName, p.ContactName)
	set(&in.TelephoneNum, p.TelephoneNum)
	set(&in.MobileNum, p.MobileNum)
	set(&in.Email, p.Email)
	set(&in.Website, p.Website)
	set(&in.Title, p.Title)
	set(&in.Purpose, p.Purpose)
	set(&in.Skills, p.Skills)
	set(&in.Location, p.Location)
	set(&in.ImageURL, p.ImageURL)
	if p.Categories != nil {
		in.Categories = *p.Categories
	}
	if p.Suitability != nil {
		in.Suitability = *p.Suitability
	}
	if p.Dates != nil {
		in.Dates = *p.Dates
	}
	if p.Hours != nil {
		in.Hours = *p.Hours
	}
	return in
}

// toJob cleans and validates in. The first problem found is returned as a
// ValidationFailed error naming the field.
func (in JobInput) toJob() (models.Job, error) {
	j := models.Job{
		Organizer:   normalize.Name(htmlsanitize.StripTags(in.Organizer)),
		ContactName: normalize.Name(htmlsanitize.StripTags(in.ContactName)),
		Title:       normalize.Name(htmlsanitize.StripTags(in.Title)),
		Purpose:     htmlsanitize.Sanitize(in.Purpose),
		Skills:      htmlsanitize.StripTags(in.Skills),
		Location:    htmlsanitize.StripTags(in.Location),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Website:     strings.TrimSpace(in.Website),
		Email:       normalize.Email(in.Email),
		Categories:  normalize.StringList(in.Categories),
		Suitability: normalize.StringList(in.Suitability),
		Hours:       in.Hours,
	}

	if j.Title == "" {
		return models.Job{}, apperr.ValidationFailed("title", "title is required")
	}
	if utf8.RuneCountInString(j.Title) > maxTitleLen {
		return models.Job{}, apperr.ValidationFailed("title", "title is too long")
	}
	if htmlsanitize.StripTags(j.Purpose) == "" {
		return models.Job{}, apperr.ValidationFailed("purpose", "purpose is required")
	}
	if utf8.RuneCountInString(j.Purpose) > maxPurposeLen {
		return models.Job{}, apperr.ValidationFailed("purpose", "purpose is too long")
	}
	for field, v := range map[string]string{
		"organizer":   j.Organizer,
		"contactName": j.ContactName,
		"skills":      j.Skills,
		"location":    j.Location,
		"imageUrl":    j.ImageURL,
	} {
		if utf8.RuneCountInString(v) > maxFieldLen {
			return models.Job{}, apperr.ValidationFailed(field, field+" is too long")
		}
	}

	if math.IsNaN(in.Hours) || math.IsInf(in.Hours, 0) || in.Hours <= 0 {
		return models.Job{}, apperr.ValidationFailed("hours", "hours must be a positive number")
	}
	if in.Hours > maxHours {
		return models.Job{}, apperr.ValidationFailed("hours", "hours is unrealistically large")
	}

	if len(j.Categories) == 0 {
		return models.Job{}, apperr.ValidationFailed("categories", "at least one category is required")
	}
	for _, c := range j.Categories {
		if !models.IsCategory(c) {
			return models.Job{}, apperr.ValidationFailed("categories", "unknown category: "+c)
		}
	}
	if j.Suitability == nil {
		j.Suitability = []string{}
	}
	for _, s := range j.Suitability {
		if !models.IsSuitability(s) {
			return models.Job{}, apperr.ValidationFailed("suitability", "unknown suitability: "+s)
		}
	}

	dates, err := parseDates(in.Dates)
	if err != nil {
		return models.Job{}, err
	}
	j.Dates = dates

	if j.Email != "" {
		if !inputval.IsValidEmail(j.Email) {
			return models.Job{}, apperr.ValidationFailed("email", "email is not a valid address")
		}
	}
	if j.Website != "" && !urlutil.IsValidAbsHTTPURL(j.Website) {
		return models.Job{}, apperr.ValidationFailed("website", "website must be an http(s) URL")
	}
	if j.TelephoneNum, err = phone("telephoneNum", in.TelephoneNum); err != nil {
		return models.Job{}, err
	}
	if j.MobileNum, err = phone("mobileNum", in.MobileNum); err != nil {
		return models.Job{}, err
	}
	return j, nil
}

func parseDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		var t time.Time
		var err error
		for _, layout := range dateLayouts {
			if t, err = time.Parse(layout, s); err == nil {
				break
			}
		}
		if err != nil {
			return nil, apperr.ValidationFailed("dates", "unrecognised date: "+s)
		}
		out = append(out, t.UTC())
	}
	return out, nil
}

func phone(field, raw string) (string, error) {
	p := normalize.Phone(raw)
	if p == "" {
		return "", nil
	}
	if !normalize.IsPhone(p) {
		return "", apperr.ValidationFailed(field, field+" must be a phone number")
	}
	return p, nil
}
