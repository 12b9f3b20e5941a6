package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueDate_ToleratesInvalidValues(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":"1","title":"x","status":"pending","priority":"low","due_date":"not a date","deleted_at":null}`), &task)
	require.NoError(t, err)

	_, ok := task.DueDate.Time()
	assert.False(t, ok)
	assert.Equal(t, time.Unix(0, 0).UTC(), task.DueDate.SortKey())
	assert.Equal(t, "not a date", task.DueDate.String())
}

func TestDueDate_Layouts(t *testing.T) {
	cases := []string{
		"2025-01-10",
		"2025-01-10T12:00:00Z",
		"2025-01-10T12:00:00.000Z",
		"2025-01-10T12:00:00+00:00",
		"2025-01-10T12:00:00",
	}
	for _, raw := range cases {
		got, ok := ParseDueDate(raw).Time()
		require.True(t, ok, raw)
		assert.Equal(t, 2025, got.Year(), raw)
		assert.Equal(t, time.January, got.Month(), raw)
		assert.Equal(t, 10, got.Day(), raw)
	}
}

func TestDateOnly_SubmitsNoonUTC(t *testing.T) {
	d, ok := DateOnly("2025-03-01")
	require.True(t, ok)
	assert.Equal(t, "2025-03-01T12:00:00Z", d.String())

	_, ok = DateOnly("01/03/2025")
	assert.False(t, ok)
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
}

func TestTaskPatch_WireNames(t *testing.T) {
	supplier := ""
	hours := 2.5
	tags := []string{"a", "b"}
	due := ParseDueDate("2025-01-01")
	patch := TaskPatch{
		SupplierID:     &supplier,
		EstimatedHours: &hours,
		Tags:           &tags,
		DueDate:        &due,
		ClearDeletedAt: true,
	}

	data, err := json.Marshal(patch)
	require.NoError(t, err)
	assert.JSONEq(t, `{"supplier_id":null,"estimated_hours":2.5,"tags":["a","b"],"due_date":"2025-01-01","deleted_at":null}`, string(data))

	var back TaskPatch
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.SupplierID)
	assert.Equal(t, "", *back.SupplierID)
	assert.True(t, back.ClearDeletedAt)
	assert.Equal(t, []string{"a", "b"}, *back.Tags)
}

func TestTaskPatch_RejectsUnknownAndInvalidFields(t *testing.T) {
	var p TaskPatch
	assert.Error(t, json.Unmarshal([]byte(`{"dueDate":"2025-01-01"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"status":"done"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"priority":"urgent"}`), &p))
}

func TestTaskPatch_Apply(t *testing.T) {
	sid := "s1"
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	task := Task{ID: "1", Title: "old", SupplierID: &sid, DeletedAt: &now}

	title := "new"
	unlink := ""
	TaskPatch{Title: &title, SupplierID: &unlink, ClearDeletedAt: true}.Apply(&task)

	assert.Equal(t, "new", task.Title)
	assert.Nil(t, task.SupplierID)
	assert.Nil(t, task.DeletedAt)
}

func TestTaskPatch_ClearsEstimatedHours(t *testing.T) {
	var p TaskPatch
	require.NoError(t, json.Unmarshal([]byte(`{"estimated_hours":null}`), &p))
	assert.True(t, p.ClearEstimatedHours)
	assert.Nil(t, p.EstimatedHours)
	assert.False(t, p.Empty())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"estimated_hours":null}`, string(data))

	hours := 3.0
	task := Task{ID: "1", Title: "a", EstimatedHours: &hours}
	p.Apply(&task)
	assert.Nil(t, task.EstimatedHours)
}

func TestPatchFromTaskInput_ClearsMissingEstimate(t *testing.T) {
	p := PatchFromTaskInput(TaskInput{Title: "a", Priority: PriorityLow})
	assert.True(t, p.ClearEstimatedHours)

	hours := 1.5
	p = PatchFromTaskInput(TaskInput{Title: "a", Priority: PriorityLow, EstimatedHours: &hours})
	assert.False(t, p.ClearEstimatedHours)
	require.NotNil(t, p.EstimatedHours)
	assert.Equal(t, 1.5, *p.EstimatedHours)
}

func TestDecodeTasks_Validates(t *testing.T) {
	_, err := DecodeTasks([]byte(`[{"id":"1","title":"","status":"pending","priority":"low","due_date":null,"supplier_id":null,"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-01T00:00:00Z","deleted_at":null}]`))
	assert.Error(t, err)

	_, err = DecodeTasks([]byte(`[{"id":"1","title":"a","status":"archived","priority":"low"}]`))
	assert.Error(t, err)

	_, err = DecodeTasks([]byte(`[{"id":"1","title":"a","status":"pending","priority":"low","surprise":true}]`))
	assert.Error(t, err)

	tasks, err := DecodeTasks([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDecodeTask_RoundTripsFieldNames(t *testing.T) {
	raw := `{"id":"1","user_id":"u","title":"a","notes":"n","status":"completed","priority":"high","due_date":"2025-01-01","supplier_id":"s","estimated_hours":3,"tags":["x"],"created_at":"2025-01-01T00:00:00Z","updated_at":"2025-01-02T00:00:00Z","deleted_at":"2025-01-03T00:00:00Z"}`
	task, err := DecodeTask([]byte(raw))
	require.NoError(t, err)

	out, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	task := Task{Status: StatusPending, DueDate: ParseDueDate("2025-05-09")}
	assert.True(t, task.IsOverdue(now))

	task.DueDate = ParseDueDate("2025-05-10")
	assert.False(t, task.IsOverdue(now))

	task.DueDate = ParseDueDate("2025-05-01")
	task.Status = StatusCompleted
	assert.False(t, task.IsOverdue(now))

	task.Status = StatusPending
	task.DueDate = ParseDueDate("garbage")
	assert.False(t, task.IsOverdue(now))
}

func TestSession_Authenticated(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{}.Authenticated(now))
	assert.True(t, Session{UserID: "u"}.Authenticated(now))
	assert.False(t, Session{UserID: "u", ExpiresAt: now.Add(-time.Second)}.Authenticated(now))
	assert.True(t, Session{UserID: "u", ExpiresAt: now.Add(time.Minute)}.Authenticated(now))
}
