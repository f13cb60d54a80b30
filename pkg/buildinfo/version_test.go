package buildinfo

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	if got := Get(); got.Version != Version || got.Commit != Commit {
		t.Errorf("Get() = %+v", got)
	}
	if !strings.Contains(String(), "version: "+Version) {
		t.Errorf("String() = %q", String())
	}
	if !strings.HasPrefix(Template(), "{{.Name}} ") {
		t.Errorf("Template() = %q", Template())
	}
}
