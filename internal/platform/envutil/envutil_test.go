package envutil

import (
	"testing"
	"time"
)

func TestStringWithAliasPrefersPrimary(t *testing.T) {
	t.Setenv("ADVISOR_TEST_KEY", "primary")
	t.Setenv("ADVISOR_TEST_KEY_OLD", "legacy")

	v, used := StringWithAlias("ADVISOR_TEST_KEY", "ADVISOR_TEST_KEY_OLD", "")
	if v != "primary" || used {
		t.Fatalf("got=%q usedAlias=%v", v, used)
	}
}

func TestStringWithAliasFallsBack(t *testing.T) {
	t.Setenv("ADVISOR_TEST_KEY2", "")
	t.Setenv("ADVISOR_TEST_KEY2_OLD", "legacy")

	v, used := StringWithAlias("ADVISOR_TEST_KEY2", "ADVISOR_TEST_KEY2_OLD", "def")
	if v != "legacy" || !used {
		t.Fatalf("got=%q usedAlias=%v", v, used)
	}

	v, used = StringWithAlias("ADVISOR_TEST_MISSING", "", "def")
	if v != "def" || used {
		t.Fatalf("default: got=%q usedAlias=%v", v, used)
	}
}

func TestTypedReaders(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "12")
	t.Setenv("ENVUTIL_BAD_INT", "x")
	t.Setenv("ENVUTIL_BOOL", "off")
	t.Setenv("ENVUTIL_SECONDS", "30")
	t.Setenv("ENVUTIL_LIST", " csv, ,pdf ")

	if got := Int("ENVUTIL_INT", 1); got != 12 {
		t.Fatalf("Int=%d", got)
	}
	if got := Int("ENVUTIL_BAD_INT", 7); got != 7 {
		t.Fatalf("Int bad=%d", got)
	}
	if got := Bool("ENVUTIL_BOOL", true); got {
		t.Fatalf("Bool=%v", got)
	}
	if got := Seconds("ENVUTIL_SECONDS", time.Second); got != 30*time.Second {
		t.Fatalf("Seconds=%s", got)
	}
	got := List("ENVUTIL_LIST", nil)
	if len(got) != 2 || got[0] != "csv" || got[1] != "pdf" {
		t.Fatalf("List=%v", got)
	}
}
