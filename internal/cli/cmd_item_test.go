package cli

import (
	"strings"
	"testing"
)

func TestAddCreatesDefaultList(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	stdout := cli.MustRun("add", "Milk")
	if !strings.Contains(stdout, `added "Milk"`) {
		t.Errorf("stdout = %q", stdout)
	}

	stdout = cli.MustRun("ls")
	if !strings.Contains(stdout, "Shopping List") {
		t.Errorf("default list not created:\n%s", stdout)
	}
}

func TestAddDuplicateIsNoop(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	cli.MustRun("add", "Milk")

	stdout := cli.MustRun("add", "milk")
	if !strings.Contains(stdout, "already on the list") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestAddEmptyNameFails(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	stderr := cli.MustFail("add", "   ")
	if !strings.Contains(stderr, "name cannot be empty") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestBuyByNameAndRevive(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	cli.MustRun("add", "Milk")

	stdout := cli.MustRun("buy", "milk")
	if !strings.Contains(stdout, `bought "Milk"`) {
		t.Errorf("stdout = %q", stdout)
	}

	lsOut := cli.MustRun("ls")
	if !strings.Contains(lsOut, "[x] Milk") {
		t.Errorf("item not shown bought:\n%s", lsOut)
	}

	// Re-adding revives instead of duplicating.
	stdout = cli.MustRun("add", "Milk")
	if !strings.Contains(stdout, `revived "Milk"`) {
		t.Errorf("stdout = %q", stdout)
	}

	lsOut = cli.MustRun("ls")
	if strings.Count(lsOut, "Milk") != 1 {
		t.Errorf("expected exactly one Milk row:\n%s", lsOut)
	}
}

func TestBuyUnknownItemFails(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)
	cli.MustRun("add", "Milk")

	stderr := cli.MustFail("buy", "Caviar")
	if !strings.Contains(stderr, "item not found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRmDeletesItem(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	cli.MustRun("add", "Milk")
	cli.MustRun("rm", "Milk")

	stdout := cli.MustRun("ls")
	if strings.Contains(stdout, "Milk") {
		t.Errorf("item still listed after rm:\n%s", stdout)
	}
}

func TestClearRemovesOnlyBought(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	cli.MustRun("add", "Milk")
	cli.MustRun("add", "Eggs")
	cli.MustRun("buy", "Milk")

	stdout := cli.MustRun("clear")
	if !strings.Contains(stdout, "cleared 1") {
		t.Errorf("stdout = %q", stdout)
	}

	lsOut := cli.MustRun("ls")
	if strings.Contains(lsOut, "Milk") || !strings.Contains(lsOut, "Eggs") {
		t.Errorf("clear removed the wrong rows:\n%s", lsOut)
	}
}

func TestReorderChangesPendingOrder(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	cli.MustRun("add", "Milk")
	cli.MustRun("add", "Eggs")

	ids := itemIDs(t, cli.MustRun("ls"))
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}

	// Reverse the order.
	cli.MustRun("reorder", ids[1], ids[0])

	after := itemIDs(t, cli.MustRun("ls"))
	if after[0] != ids[1] || after[1] != ids[0] {
		t.Errorf("order not reversed: before %v, after %v", ids, after)
	}
}

func TestReorderMismatchFails(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	cli.MustRun("add", "Milk")

	stderr := cli.MustFail("reorder", "not-an-id")
	if !strings.Contains(stderr, "reorder") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestSuggestFromPurchaseHistory(t *testing.T) {
	t.Parallel()

	cli := NewCLI(t)

	cli.MustRun("add", "Bread")
	cli.MustRun("add", "Breadsticks")
	cli.MustRun("buy", "Bread")
	cli.MustRun("buy", "Breadsticks")
	cli.MustRun("clear")

	// Short input: prefix matching only.
	stdout := cli.MustRun("suggest", "br")
	if !strings.Contains(stdout, "Bread") || !strings.Contains(stdout, "Breadsticks") {
		t.Errorf("suggest output = %q", stdout)
	}

	// Active items are excluded.
	cli.MustRun("add", "Bread")

	stdout = cli.MustRun("suggest", "br")

	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) == "Bread" {
			t.Errorf("active item suggested:\n%s", stdout)
		}
	}
}

// itemIDs extracts the parenthesized item ids from ls output, in display
// order.
func itemIDs(t *testing.T, lsOut string) []string {
	t.Helper()

	var ids []string

	for _, line := range strings.Split(lsOut, "\n") {
		if !strings.HasPrefix(line, "[") {
			continue
		}

		openIdx := strings.LastIndex(line, "(")
		closeIdx := strings.LastIndex(line, ")")

		if openIdx >= 0 && closeIdx > openIdx {
			ids = append(ids, line[openIdx+1:closeIdx])
		}
	}

	return ids
}
