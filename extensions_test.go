package compositor

import "testing"

func TestCheckVersionFloor(t *testing.T) {
	req := minVersion{name: "Composite", major: 0, minor: 3}

	cases := []struct {
		major, minor uint32
		wantErr      bool
	}{
		{0, 3, false}, // exact floor
		{0, 4, false}, // newer minor
		{1, 0, false}, // newer major
		{0, 2, true},  // older minor
	}
	for _, c := range cases {
		err := checkVersionFloor(req, c.major, c.minor)
		if (err != nil) != c.wantErr {
			t.Errorf("checkVersionFloor(%d.%d) error = %v, wantErr %v", c.major, c.minor, err, c.wantErr)
		}
	}
}

func TestRequiredVersionsCoverAllExtensions(t *testing.T) {
	names := map[string]bool{}
	for _, v := range requiredVersions {
		names[v.name] = true
	}
	for _, want := range []string{"Composite", "Shape", "Render", "Damage", "XFixes"} {
		if !names[want] {
			t.Errorf("requiredVersions missing entry for %s", want)
		}
	}
}

func TestNegotiationsTableCoversRequiredVersions(t *testing.T) {
	table := negotiations()
	have := map[string]bool{}
	for _, entry := range table {
		have[entry.name] = true
	}
	for _, v := range requiredVersions {
		if !have[v.name] {
			t.Errorf("negotiations table missing entry for %s", v.name)
		}
	}
}

func TestNegotiateEventExtensionsIsDamageOnly(t *testing.T) {
	// NegotiateEventExtensions must stay scoped to what the event
	// connection actually issues (Damage create/subtract), not the full
	// extension set — widening it back out would be the same bug in
	// reverse, redundantly negotiating extensions whose requests never
	// touch that connection.
	if len(eventExtensionNames) != 1 || eventExtensionNames[0] != "DAMAGE" {
		t.Fatalf("eventExtensionNames = %v, want [DAMAGE]", eventExtensionNames)
	}
	table := negotiations()
	if _, ok := table["DAMAGE"]; !ok {
		t.Fatal("negotiations table missing DAMAGE entry")
	}
}
