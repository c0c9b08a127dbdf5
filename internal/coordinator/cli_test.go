package coordinator_test

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"todobin/internal/coordinator"
	"todobin/internal/testutil"
)

// =============================================================================
// Task and Recycle Bin CLI Tests
// The test clock is testutil.FixedNow (2025-01-03).
// =============================================================================

func TestAddTaskCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("add", "Buy groceries")

	testutil.AssertContains(t, stdout, coordinator.MsgTaskAdded)
	testutil.AssertContains(t, stdout, "Added task: Buy groceries")
	testutil.AssertResultCode(t, stdout, testutil.ResultActionCompleted)
}

func TestAddTaskWithDueDateCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("add", "Pay rent", "--due", "2025-01-05")

	testutil.AssertContains(t, stdout, "Added task: Pay rent (Due: Jan 5, 2025)")
}

func TestAddBlankTaskCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout, stderr := cli.ExecuteAndFail("add", "   ")

	testutil.AssertContains(t, stdout, coordinator.MsgInvalidTaskName)
	testutil.AssertResultCode(t, stdout, testutil.ResultError)
	testutil.AssertContains(t, stderr, "Error:")

	stdout = cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "No tasks.")
}

func TestListSortsByDueDateCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	cli.MustExecute("add", "No date")
	cli.MustExecute("add", "Later", "--due", "2025-02-01")
	cli.MustExecute("add", "Overdue", "--due", "2025-01-01")
	cli.MustExecute("add", "Today", "--due", "2025-01-03")

	stdout := cli.MustExecute("list")

	testutil.AssertContains(t, stdout, "To Do Tasks (All, 4 of 4):")
	testutil.AssertOrder(t, stdout, "Overdue", "Today", "Later", "No date")
	testutil.AssertContains(t, stdout, "[OVERDUE]")
	testutil.AssertContains(t, stdout, "[TODAY]")
	testutil.AssertResultCode(t, stdout, testutil.ResultInfoOnly)
}

func TestListFilterCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	cli.MustExecute("add", "Done already")
	cli.MustExecute("add", "Still open", "--due", "2025-01-01")
	cli.MustExecute("complete", "Done already")

	tests := []struct {
		filter  string
		want    string
		notWant string
	}{
		{"completed", "Done already", "Still open"},
		{"pending", "Still open", "Done already"},
		{"overdue", "Still open", "Done already"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			stdout := cli.MustExecute("list", "--filter", tt.filter)
			testutil.AssertContains(t, stdout, tt.want)
			testutil.AssertNotContains(t, stdout, tt.notWant)
		})
	}

	stdout := cli.MustExecute("list", "--filter", "dueToday")
	testutil.AssertContains(t, stdout, "No tasks.")
}

func TestListInvalidFilterCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	_, stderr := cli.ExecuteAndFail("list", "--filter", "someday")

	testutil.AssertContains(t, stderr, "someday")
}

func TestListDefaultFilterFromConfigCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SetConfigValue("default_filter", "completed")

	cli.MustExecute("add", "Open task")
	stdout := cli.MustExecute("list")

	testutil.AssertContains(t, stdout, "No tasks.")
}

func TestListJSONCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	cli.MustExecute("add", "Call mom", "--due", "2025-01-03")
	stdout := cli.MustExecute("--json", "list")

	var resp struct {
		Tasks []struct {
			Text      string `json:"text"`
			DueDate   string `json:"due_date"`
			DueStatus string `json:"due_status"`
		} `json:"tasks"`
		Count  int    `json:"count"`
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if resp.Count != 1 || resp.Tasks[0].Text != "Call mom" {
		t.Fatalf("unexpected tasks: %+v", resp)
	}
	if resp.Tasks[0].DueDate != "2025-01-03" || resp.Tasks[0].DueStatus != "today" {
		t.Errorf("expected due today, got %+v", resp.Tasks[0])
	}
	if resp.Result != testutil.ResultInfoOnly {
		t.Errorf("expected %s, got %s", testutil.ResultInfoOnly, resp.Result)
	}
}

func TestCompleteAndReopenCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Water plants")

	stdout := cli.MustExecute("complete", "water")
	testutil.AssertContains(t, stdout, coordinator.MsgTaskCompleted)
	testutil.AssertContains(t, stdout, "Completed task: Water plants")

	stdout = cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "[x] Water plants")

	stdout = cli.MustExecute("uncomplete", "water")
	testutil.AssertContains(t, stdout, coordinator.MsgTaskPending)

	stdout = cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "[ ] Water plants")
}

func TestCompleteUnknownTaskCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Something")

	stdout, stderr := cli.ExecuteAndFail("complete", "nothing")

	testutil.AssertContains(t, stderr, "task not found: nothing")
	testutil.AssertResultCode(t, stdout, testutil.ResultError)
}

func TestEditTextCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Buy milk")

	stdout := cli.MustExecute("edit", "Buy milk", "Buy oat milk")
	testutil.AssertContains(t, stdout, "Updated task: Buy oat milk")

	stdout = cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "Buy oat milk")
}

func TestEditBlankTextKeepsTaskCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Buy milk")

	cli.ExecuteAndFail("edit", "Buy milk", "   ")

	stdout := cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "Buy milk")
}

func TestDueDateResortsCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "First", "--due", "2025-01-10")
	cli.MustExecute("add", "Second", "--due", "2025-01-20")

	stdout := cli.MustExecute("due", "Second", "2025-01-04")
	testutil.AssertContains(t, stdout, "Updated due date: Second (Due: Jan 4, 2025)")

	stdout = cli.MustExecute("list")
	testutil.AssertOrder(t, stdout, "Second", "First")
}

func TestDueDateInvalidCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Task")

	cli.ExecuteAndFail("due", "Task", "not-a-date")
}

func TestDeleteMovesToBinCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Old task")

	stdout := cli.MustExecute("delete", "Old task")
	testutil.AssertContains(t, stdout, coordinator.MsgTaskDeleted)
	testutil.AssertContains(t, stdout, "Deleted task: Old task")

	stdout = cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "No tasks.")

	stdout = cli.MustExecute("bin")
	testutil.AssertContains(t, stdout, "Recycle bin (1):")
	testutil.AssertContains(t, stdout, "1. [ ] Old task")
}

func TestDeleteVisibleOnlyFilteredCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Keep me")
	cli.MustExecute("add", "Finished one")
	cli.MustExecute("add", "Finished two")
	cli.MustExecute("complete", "Finished one")
	cli.MustExecute("complete", "Finished two")

	stdout := cli.MustExecute("delete-visible", "--filter", "completed")
	testutil.AssertContains(t, stdout, coordinator.MsgVisibleDeleted)
	testutil.AssertContains(t, stdout, "Moved 2 tasks to the recycle bin")

	stdout = cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "Keep me")
	testutil.AssertNotContains(t, stdout, "Finished")

	stdout = cli.MustExecute("bin")
	testutil.AssertOrder(t, stdout, "Finished one", "Finished two")
}

func TestDeleteVisibleEmptyCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("delete-visible")

	testutil.AssertContains(t, stdout, "No visible tasks to delete.")
	testutil.AssertResultCode(t, stdout, testutil.ResultInfoOnly)
}

func TestDeleteVisibleDeclinedCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Stay")
	cli.SetStdin("n\n")

	stdout := cli.MustExecute("delete-visible")
	testutil.AssertContains(t, stdout, "Cancelled.")

	stdout = cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "Stay")
}

func TestBinEmptyCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("bin")

	testutil.AssertContains(t, stdout, "Recycle bin is empty.")
	testutil.AssertResultCode(t, stdout, testutil.ResultInfoOnly)
}

func TestBinRestoreCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Later", "--due", "2025-03-01")
	cli.MustExecute("add", "Soon", "--due", "2025-01-05")
	cli.MustExecute("delete", "Soon")

	stdout := cli.MustExecute("bin", "restore", "Soon")
	testutil.AssertContains(t, stdout, coordinator.MsgTaskRestored)
	testutil.AssertContains(t, stdout, "Restored task: Soon (Due: Jan 5, 2025)")

	stdout = cli.MustExecute("list")
	testutil.AssertOrder(t, stdout, "Soon", "Later")

	stdout = cli.MustExecute("bin")
	testutil.AssertContains(t, stdout, "Recycle bin is empty.")
}

func TestBinRestoreKeepsCompletedCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Done task")
	cli.MustExecute("complete", "Done task")
	cli.MustExecute("delete", "Done task")

	cli.MustExecute("bin", "restore", "Done task")

	stdout := cli.MustExecute("list")
	testutil.AssertContains(t, stdout, "[x] Done task")
}

func TestBinRestoreUnknownCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	_, stderr := cli.ExecuteAndFail("bin", "restore", "ghost")

	testutil.AssertContains(t, stderr, "ghost")
}

func TestBinRestoreAllCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "One")
	cli.MustExecute("add", "Two")
	cli.MustExecute("delete", "Two")
	cli.MustExecute("delete", "One")

	stdout := cli.MustExecute("bin", "restore-all")
	testutil.AssertContains(t, stdout, coordinator.MsgAllRestored)
	testutil.AssertContains(t, stdout, "Restored 2 tasks")

	// Undated tasks keep bin order.
	stdout = cli.MustExecute("list")
	testutil.AssertOrder(t, stdout, "Two", "One")
}

func TestBinRestoreAllEmptyCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("bin", "restore-all")

	testutil.AssertContains(t, stdout, "Recycle bin is empty.")
	testutil.AssertResultCode(t, stdout, testutil.ResultInfoOnly)
}

func TestBinPurgeCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Gone")
	cli.MustExecute("delete", "Gone")

	stdout := cli.MustExecute("bin", "purge")
	testutil.AssertContains(t, stdout, coordinator.MsgBinEmptied)
	testutil.AssertContains(t, stdout, "Purged 1 tasks")

	stdout = cli.MustExecute("bin")
	testutil.AssertContains(t, stdout, "Recycle bin is empty.")
}

func TestBinPurgeDeclinedCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Keep in bin")
	cli.MustExecute("delete", "Keep in bin")
	cli.SetStdin("no\n")

	stdout := cli.MustExecute("bin", "purge")
	testutil.AssertContains(t, stdout, "Cancelled.")

	stdout = cli.MustExecute("bin")
	testutil.AssertContains(t, stdout, "Keep in bin")
}

func TestBinJSONCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Trash me")
	cli.MustExecute("delete", "Trash me")

	stdout := cli.MustExecute("--json", "bin")

	var resp struct {
		Entries []struct {
			Text      string `json:"text"`
			DeletedAt string `json:"deleted_at"`
		} `json:"entries"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if resp.Count != 1 || resp.Entries[0].Text != "Trash me" {
		t.Fatalf("unexpected entries: %+v", resp)
	}
	if resp.Entries[0].DeletedAt == "" {
		t.Error("expected deleted_at to be set")
	}
}

func TestActionJSONCarriesMessageCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	stdout := cli.MustExecute("--json", "add", "JSON task")

	if strings.Contains(stdout, coordinator.MsgTaskAdded+"\n") {
		t.Errorf("message should only appear inside the JSON body, got: %s", stdout)
	}
	var resp struct {
		Action  string `json:"action"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if resp.Action != "add" || resp.Message != coordinator.MsgTaskAdded {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestNotificationLogCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	cli.MustExecute("add", "Logged task")

	logged, err := os.ReadFile(cli.NotificationLogPath())
	if err != nil {
		t.Fatalf("failed to read notification log: %v", err)
	}
	testutil.AssertContains(t, string(logged), "[SUCCESS] "+coordinator.MsgTaskAdded)
}

func TestRemindCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Late", "--due", "2025-01-01")
	cli.MustExecute("add", "Now", "--due", "2025-01-03")
	cli.MustExecute("add", "Soon", "--due", "2025-01-04")
	cli.MustExecute("add", "Done late", "--due", "2025-01-01")
	cli.MustExecute("complete", "Done late")

	stdout := cli.MustExecute("remind")
	testutil.AssertContains(t, stdout, "Reminders (2):")
	testutil.AssertContains(t, stdout, "Overdue: Late (Due: Jan 1, 2025)")
	testutil.AssertContains(t, stdout, "Due today: Now")
	testutil.AssertNotContains(t, stdout, "Soon")
	testutil.AssertNotContains(t, stdout, "Done late")

	stdout = cli.MustExecute("remind", "--within", "2d")
	testutil.AssertContains(t, stdout, "Upcoming: Soon (Due: Jan 4, 2025)")
}

func TestRemindDisabledCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SetFullConfig("backend: sqlite\nreminder:\n  enabled: false\n")

	stdout := cli.MustExecute("remind")

	testutil.AssertContains(t, stdout, "Reminders are disabled.")
}

// --- Interactive Tests ---

func TestInteractiveAddCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.SetStdin("Call mom\ntomorrow\n")

	stdout := cli.MustExecute("add")

	testutil.AssertContains(t, stdout, "Task (required): ")
	testutil.AssertContains(t, stdout, "Added task: Call mom (Due: Jan 4, 2025)")
}

func TestAddWithoutTextNoPromptCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)

	_, stderr := cli.ExecuteAndFail("add")

	testutil.AssertContains(t, stderr, "task text is required")
}

func TestCompleteSelectsTaskCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Alpha")
	cli.MustExecute("add", "Beta")
	cli.MustExecute("add", "Gamma")
	cli.MustExecute("complete", "Alpha")
	cli.SetStdin("\n2\n")

	stdout := cli.MustExecute("complete")

	testutil.AssertContains(t, stdout, "Select a task to complete:")
	testutil.AssertNotContains(t, stdout, "1) Alpha")
	testutil.AssertContains(t, stdout, "Completed task: Gamma")
}

func TestAmbiguousMatchPromptsCLI(t *testing.T) {
	cli := testutil.NewCLITest(t)
	cli.MustExecute("add", "Buy milk")
	cli.MustExecute("add", "Buy bread")
	cli.SetStdin("bread\n")

	stdout := cli.MustExecute("delete", "buy")

	testutil.AssertContains(t, stdout, "Multiple tasks match 'buy':")
	testutil.AssertContains(t, stdout, "Deleted task: Buy bread")
}
