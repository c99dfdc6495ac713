package jobs_test

import (
	"net/http"
	"testing"

	"github.com/felix-ong/volunteer-board/internal/app/features/jobs"
	"github.com/felix-ong/volunteer-board/internal/app/jobboard"
	"github.com/felix-ong/volunteer-board/internal/app/store/memory"
	"github.com/felix-ong/volunteer-board/internal/app/system/auditlog"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"github.com/felix-ong/volunteer-board/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	t      *testing.T
	router chi.Router
	svc    *jobboard.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	events := memory.NewAuditStore()
	audit := auditlog.New(events, zap.NewNop(), auditlog.ModeDB)
	svc := jobboard.New(memory.NewJobStore(), memory.NewUserStore(), audit, zap.NewNop()).WithHistory(events)
	h := jobs.NewHandler(svc, 10, zap.NewNop())
	return &env{t: t, router: jobs.Routes(h), svc: svc}
}

func (e *env) do(r *http.Request, id auth.Identity) *testutil.ResponseRecorder {
	e.t.Helper()
	if !id.IsZero() {
		r = testutil.AsUser(r, id)
	}
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

func jobBody() map[string]any {
	return map[string]any{
		"organizer":  "Green Earth",
		"title":      "Beach Cleanup",
		"purpose":    "Collect litter along the shore.",
		"categories": []string{"Environment"},
		"dates":      []string{"2024-05-01"},
		"hours":      3,
	}
}

func (e *env) createJob(author auth.Identity) models.Job {
	e.t.Helper()
	rec := e.do(testutil.NewJSONRequest(e.t, http.MethodPost, "/", jobBody()), author)
	rec.AssertStatus(e.t, http.StatusCreated)
	var j models.Job
	rec.DecodeJSON(e.t, &j)
	return j
}

func (e *env) approve(id string) {
	e.t.Helper()
	rec := e.do(testutil.NewRequest(http.MethodPatch, "/"+id+"/approve"), testutil.AdminUser())
	rec.AssertStatus(e.t, http.StatusOK)
}

func TestCreate(t *testing.T) {
	e := newEnv(t)

	rec := e.do(testutil.NewJSONRequest(t, http.MethodPost, "/", jobBody()), testutil.OrganizationUser())
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"status":"pending"`)
	rec.AssertContains(t, `"isApproved":false`)

	rec = e.do(testutil.NewJSONRequest(t, http.MethodPost, "/", jobBody()), auth.Identity{})
	rec.AssertStatus(t, http.StatusUnauthorized)

	rec = e.do(testutil.NewJSONRequest(t, http.MethodPost, "/", jobBody()), testutil.StudentUser())
	rec.AssertStatus(t, http.StatusForbidden)

	bad := jobBody()
	bad["hours"] = 0
	rec = e.do(testutil.NewJSONRequest(t, http.MethodPost, "/", bad), testutil.OrganizationUser())
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"field":"hours"`)
}

func TestCreate_EmptyBody(t *testing.T) {
	e := newEnv(t)
	req := testutil.NewRequest(http.MethodPost, "/")
	req.Body = http.NoBody
	rec := e.do(req, testutil.OrganizationUser())
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestGet(t *testing.T) {
	e := newEnv(t)
	org := testutil.OrganizationUser()
	j := e.createJob(org)

	e.do(testutil.NewRequest(http.MethodGet, "/"+j.ID.Hex()), auth.Identity{}).AssertStatus(t, http.StatusNotFound)
	e.do(testutil.NewRequest(http.MethodGet, "/"+j.ID.Hex()), org).AssertStatus(t, http.StatusOK)
	e.do(testutil.NewRequest(http.MethodGet, "/not-an-id"), org).AssertStatus(t, http.StatusNotFound)

	e.approve(j.ID.Hex())
	rec := e.do(testutil.NewRequest(http.MethodGet, "/"+j.ID.Hex()), auth.Identity{})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"approved"`)
	rec.AssertContains(t, `"registrationCount":0`)
}

func TestList(t *testing.T) {
	e := newEnv(t)
	org := testutil.OrganizationUser()
	for i := 0; i < 3; i++ {
		j := e.createJob(org)
		e.approve(j.ID.Hex())
	}
	e.createJob(org)

	rec := e.do(testutil.NewRequest(http.MethodGet, "/?page=1&limit=2"), auth.Identity{})
	rec.AssertStatus(t, http.StatusOK)
	var pg struct {
		Data      []models.Job `json:"data"`
		Page      int          `json:"page"`
		Limit     int          `json:"limit"`
		PageCount int          `json:"pageCount"`
		Total     int64        `json:"total"`
	}
	rec.DecodeJSON(t, &pg)
	assert.Len(t, pg.Data, 2)
	assert.Equal(t, 1, pg.Page)
	assert.Equal(t, 2, pg.Limit)
	assert.Equal(t, 2, pg.PageCount)
	assert.Equal(t, int64(3), pg.Total)

	rec = e.do(testutil.NewRequest(http.MethodGet, "/?page=5"), auth.Identity{})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"data":[]`)

	rec = e.do(testutil.NewRequest(http.MethodGet, "/?search=beach&categories=Environment,Health"), auth.Identity{})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":3`)
}

func TestList_BadParams(t *testing.T) {
	e := newEnv(t)
	for _, q := range []string{"?page=0", "?page=abc", "?limit=0", "?limit=101", "?categories=Knitting"} {
		rec := e.do(testutil.NewRequest(http.MethodGet, "/"+q), auth.Identity{})
		rec.AssertStatus(t, http.StatusBadRequest)
	}
}

func TestListUnapproved(t *testing.T) {
	e := newEnv(t)
	e.createJob(testutil.OrganizationUser())

	rec := e.do(testutil.NewRequest(http.MethodGet, "/unapproved"), testutil.AdminUser())
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":1`)

	e.do(testutil.NewRequest(http.MethodGet, "/unapproved"), testutil.OrganizationUser()).AssertStatus(t, http.StatusForbidden)
	e.do(testutil.NewRequest(http.MethodGet, "/unapproved"), auth.Identity{}).AssertStatus(t, http.StatusUnauthorized)
}

func TestCatalogs(t *testing.T) {
	e := newEnv(t)

	rec := e.do(testutil.NewRequest(http.MethodGet, "/categories"), auth.Identity{})
	rec.AssertStatus(t, http.StatusOK)
	var cats []string
	rec.DecodeJSON(t, &cats)
	assert.Equal(t, models.Categories(), cats)

	rec = e.do(testutil.NewRequest(http.MethodGet, "/suitability"), auth.Identity{})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Families")
}

func TestListByOrganizer(t *testing.T) {
	e := newEnv(t)
	e.createJob(testutil.OrganizationUser())

	rec := e.do(testutil.NewRequest(http.MethodGet, "/organizer/green%20earth"), testutil.StudentUser())
	rec.AssertStatus(t, http.StatusOK)
	var list []models.Job
	rec.DecodeJSON(t, &list)
	assert.Len(t, list, 1)

	e.do(testutil.NewRequest(http.MethodGet, "/organizer/Green"), auth.Identity{}).AssertStatus(t, http.StatusUnauthorized)
}

func TestUpdate_EditFormPayload(t *testing.T) {
	e := newEnv(t)
	org := testutil.OrganizationUser()

	body := jobBody()
	body["location"] = "East Coast Park"
	body["suitability"] = []string{"Youth"}
	body["contactName"] = "Mei Tan"
	body["mobileNum"] = "91234567"
	rec := e.do(testutil.NewJSONRequest(t, http.MethodPost, "/", body), org)
	rec.AssertStatus(t, http.StatusCreated)
	var created models.Job
	rec.DecodeJSON(t, &created)

	rec = e.do(testutil.NewJSONRequest(t, http.MethodPatch, "/"+created.ID.Hex(), map[string]any{
		"title":      "River Cleanup",
		"purpose":    "Clear the riverbank.",
		"categories": []string{"Environment", "Community"},
	}), org)
	rec.AssertStatus(t, http.StatusOK)

	var got models.Job
	rec.DecodeJSON(t, &got)
	assert.Equal(t, "River Cleanup", got.Title)
	assert.Equal(t, 3.0, got.Hours)
	assert.Equal(t, "East Coast Park", got.Location)
	assert.Equal(t, []string{"Youth"}, got.Suitability)
	assert.Equal(t, "Mei Tan", got.ContactName)
	assert.Equal(t, "91234567", got.MobileNum)
	require.Len(t, got.Dates, 1)
	assert.Equal(t, created.Dates[0], got.Dates[0])
}

func TestUpdateAndDelete(t *testing.T) {
	e := newEnv(t)
	org := testutil.OrganizationUser()
	j := e.createJob(org)

	body := jobBody()
	body["title"] = "River Cleanup"
	rec := e.do(testutil.NewJSONRequest(t, http.MethodPatch, "/"+j.ID.Hex(), body), org)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "River Cleanup")

	e.do(testutil.NewJSONRequest(t, http.MethodPatch, "/"+j.ID.Hex(), body), testutil.OrganizationUser()).
		AssertStatus(t, http.StatusForbidden)

	e.do(testutil.NewRequest(http.MethodDelete, "/"+j.ID.Hex()), testutil.StudentGroupUser()).AssertStatus(t, http.StatusForbidden)
	e.do(testutil.NewRequest(http.MethodDelete, "/"+j.ID.Hex()), org).AssertStatus(t, http.StatusNoContent)
	e.do(testutil.NewRequest(http.MethodDelete, "/"+j.ID.Hex()), org).AssertStatus(t, http.StatusNotFound)
}

func TestModeration(t *testing.T) {
	e := newEnv(t)
	admin := testutil.AdminUser()
	j := e.createJob(testutil.OrganizationUser())
	path := "/" + j.ID.Hex()

	e.do(testutil.NewRequest(http.MethodPatch, path+"/approve"), testutil.OrganizationUser()).AssertStatus(t, http.StatusForbidden)
	e.approve(j.ID.Hex())
	e.do(testutil.NewRequest(http.MethodPatch, path+"/approve"), admin).AssertStatus(t, http.StatusConflict)

	e.do(testutil.NewJSONRequest(t, http.MethodDelete, path+"/reject", map[string]string{"reason": "spam"}), admin).
		AssertStatus(t, http.StatusConflict)

	rec := e.do(testutil.NewJSONRequest(t, http.MethodPatch, path+"/unapprove", map[string]string{}), admin)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, `"field":"feedback"`)

	rec = e.do(testutil.NewJSONRequest(t, http.MethodPatch, path+"/unapprove", map[string]string{"feedback": "Add dates"}), admin)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"unapproved"`)
	rec.AssertContains(t, `"feedback":"Add dates"`)

	e.do(testutil.NewJSONRequest(t, http.MethodDelete, path+"/reject", map[string]string{"reason": "Never fixed"}), admin).
		AssertStatus(t, http.StatusNoContent)
	e.do(testutil.NewRequest(http.MethodGet, path), admin).AssertStatus(t, http.StatusNotFound)

	e.do(testutil.NewRequest(http.MethodGet, path+"/history"), testutil.OrganizationUser()).AssertStatus(t, http.StatusForbidden)
	rec = e.do(testutil.NewRequest(http.MethodGet, path+"/history"), admin)
	rec.AssertStatus(t, http.StatusOK)
	var hist struct {
		Events []struct {
			EventType string            `json:"eventType"`
			Details   map[string]string `json:"details"`
		} `json:"events"`
	}
	rec.DecodeJSON(t, &hist)
	require.NotEmpty(t, hist.Events)
	assert.Equal(t, "job_rejected", hist.Events[0].EventType)
	assert.Equal(t, "Never fixed", hist.Events[0].Details["reason"])
}

func TestRegistrations(t *testing.T) {
	e := newEnv(t)
	org := testutil.OrganizationUser()
	student := testutil.StudentUser()
	j := e.createJob(org)
	path := "/" + j.ID.Hex() + "/registrations"

	e.do(testutil.NewRequest(http.MethodPost, path), student).AssertStatus(t, http.StatusConflict)
	e.approve(j.ID.Hex())

	rec := e.do(testutil.NewRequest(http.MethodPost, path), student)
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"registrations":1`)
	e.do(testutil.NewRequest(http.MethodPost, path), student).AssertStatus(t, http.StatusConflict)
	e.do(testutil.NewRequest(http.MethodPost, path), org).AssertStatus(t, http.StatusForbidden)

	rec = e.do(testutil.NewRequest(http.MethodGet, path), org)
	rec.AssertStatus(t, http.StatusOK)
	var regs []models.Registrant
	rec.DecodeJSON(t, &regs)
	require.Len(t, regs, 1)
	assert.Equal(t, student.UserID, regs[0].UserID)
	e.do(testutil.NewRequest(http.MethodGet, path), student).AssertStatus(t, http.StatusForbidden)

	rec = e.do(testutil.NewRequest(http.MethodDelete, path), student)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"registrations":0`)
	e.do(testutil.NewRequest(http.MethodDelete, path), student).AssertStatus(t, http.StatusOK)
}
