package domain

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestTimestamp_AcceptedLayouts(t *testing.T) {
	want := time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		`"2025-09-20T00:00:00Z"`,
		`"Sat, 20 Sep 2025 00:00:00 GMT"`,
		`"2025-09-20"`,
		`"2025-09-20 00:00:00"`,
	} {
		var ts Timestamp
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("unmarshal %s: got %v", raw, ts.Time)
		}
	}
}

func TestTimestamp_NullAndGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`null`), &ts); err != nil || !ts.IsZero() {
		t.Fatalf("null should decode to zero, got %v %v", ts, err)
	}
	for _, raw := range []string{`"yesterday"`, `1758326400`, `{"$date":"2025-09-20"}`, `true`} {
		ts = NewTimestamp(time.Now())
		if err := json.Unmarshal([]byte(raw), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if !ts.IsZero() {
			t.Fatalf("unmarshal %s: expected zero, got %v", raw, ts.Time)
		}
	}
	if ts.DateString() != "" {
		t.Fatalf("zero timestamp should render empty")
	}
}

func TestTask_UnrecognisedDeadlineDoesNotFailDecode(t *testing.T) {
	body := `[{"_id":"t1","title":"a","deadline":{"$date":1758326400000}},{"_id":"t2","title":"b","deadline":"2025-09-20 10:00:00"}]`
	var tasks []Task
	if err := json.Unmarshal([]byte(body), &tasks); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(tasks) != 2 || !tasks[0].Deadline.IsZero() {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if got := tasks[1].Deadline.UTC(); !got.Equal(time.Date(2025, 9, 20, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("deadline: got %v", got)
	}
}

func TestTask_DecodesStringAndObjectComments(t *testing.T) {
	body := `{"_id":"t1","status":"Done","comments":["looks good",{"_id":"c1","text":"ship it","author":"u1"}],"extra":"ignored"}`
	var task Task
	if err := json.Unmarshal([]byte(body), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(task.Comments) != 2 || task.Comments[0].Text != "looks good" || task.Comments[1].Author != "u1" {
		t.Fatalf("unexpected comments: %+v", task.Comments)
	}
}

func TestDashboard_OptionalFields(t *testing.T) {
	var d Dashboard
	if err := json.Unmarshal([]byte(`{"tasks_by_status":{"Done":3,"In Progress":2}}`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.RecentOverdueTasks != nil || d.TotalTasks != 0 {
		t.Fatalf("absent fields should stay zero: %+v", d)
	}
	got := d.TasksByStatus.Sorted()
	if len(got) != 2 || got[0].Status != TaskInProgress || got[1].Count != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestStatusCounts_UnknownStatusesLast(t *testing.T) {
	got := StatusCounts{"Blocked": 1, TaskDone: 2, "Archived": 4, TaskToDo: 1}.Sorted()
	order := []TaskStatus{TaskToDo, TaskDone, "Archived", "Blocked"}
	for i, s := range order {
		if got[i].Status != s {
			t.Fatalf("position %d: got %s want %s", i, got[i].Status, s)
		}
	}
}

func TestTaskFilter_OmitsEmptyKeys(t *testing.T) {
	v := TaskFilter{ProjectID: "p1", Priority: PriorityHigh}.Values()
	if v.Encode() != "priority=High&project_id=p1" {
		t.Fatalf("unexpected query: %s", v.Encode())
	}
	if len(TaskFilter{}.Values()) != 0 {
		t.Fatalf("empty filter should produce no params")
	}
}

func TestTones(t *testing.T) {
	if TaskDone.Tone() != ToneSuccess || TaskInProgress.Tone() != ToneWarning || TaskToDo.Tone() != ToneDefault {
		t.Fatalf("task status tones wrong")
	}
	if PriorityHigh.Tone() != ToneError || PriorityLow.Tone() != ToneDefault {
		t.Fatalf("priority tones wrong")
	}
	if RoleTester.Tone() != ToneInfo || RoleDeveloper.Tone() != TonePrimary {
		t.Fatalf("role tones wrong")
	}
	if ProjectActive.Tone() != ToneSuccess || ProjectPlanning.Tone() != ToneDefault {
		t.Fatalf("project tones wrong")
	}
}

func TestAPIError_UnwrapsToKind(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := error(&APIError{Kind: KindTransportFailure, Err: cause})
	if !errors.Is(err, ErrTransportFailure) || !errors.Is(err, cause) {
		t.Fatalf("expected kind and cause in chain: %v", err)
	}
	if UserMessage(err) != GenericFailureMessage {
		t.Fatalf("transport failure should show generic message")
	}

	err = &APIError{Kind: KindAuthenticationFailed, Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	if !errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrAuthorizationExpired) {
		t.Fatalf("wrong sentinel for %v", err)
	}
	if UserMessage(err) != "Invalid credentials" {
		t.Fatalf("server message should pass through verbatim")
	}
}

func TestKindForStatus(t *testing.T) {
	cases := []struct {
		status int
		auth   bool
		want   ErrorKind
	}{
		{http.StatusUnauthorized, true, KindAuthenticationFailed},
		{http.StatusUnauthorized, false, KindAuthorizationExpired},
		{http.StatusBadRequest, false, KindValidationFailed},
		{http.StatusUnprocessableEntity, true, KindValidationFailed},
		{http.StatusNotFound, false, KindRequestFailed},
		{http.StatusServiceUnavailable, false, KindRequestFailed},
	}
	for _, tc := range cases {
		if got := KindForStatus(tc.status, tc.auth); got != tc.want {
			t.Fatalf("KindForStatus(%d, %v) = %s, want %s", tc.status, tc.auth, got, tc.want)
		}
	}
}

func TestValidate_Identity(t *testing.T) {
	if err := Validate(Identity{ID: "u1", Email: "a@b.com", Role: RoleTester}); err != nil {
		t.Fatalf("valid identity rejected: %v", err)
	}
	err := Validate(Identity{ID: "u1", Email: "a@b.com", Role: "Owner"})
	if err == nil || err.Error() != "role must be one of: Admin Manager Developer Designer Tester" {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(Identity{}); err == nil {
		t.Fatalf("empty identity accepted")
	}
}

func TestLookupFallbacks(t *testing.T) {
	users := []User{{ID: "u1", Username: "Dev"}}
	if UserName(users, "u1") != "Dev" || UserName(users, "") != "Unassigned" || UserName(users, "u9") != "Unassigned" {
		t.Fatalf("user lookup wrong")
	}
	projects := []Project{{ID: "p1", Name: "Site"}}
	if ProjectName(projects, "p1") != "Site" || ProjectName(projects, "x") != "Unknown Project" {
		t.Fatalf("project lookup wrong")
	}
}

func TestCredentials_StringHidesPassword(t *testing.T) {
	c := Credentials{Email: "a@b.com", Password: "hunter2"}
	if s := c.String(); s != "Credentials{Email:a@b.com, Password:***}" {
		t.Fatalf("unexpected: %s", s)
	}
}
