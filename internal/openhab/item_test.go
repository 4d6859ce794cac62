package openhab

import (
	"testing"
)

func TestParseState_Classification(t *testing.T) {
	cases := []struct {
		raw  string
		kind StateKind
	}{
		{"", StateUndefined},
		{"NULL", StateUndefined},
		{"UNDEF", StateUndefined},
		{"ON", StateBool},
		{"OFF", StateBool},
		{"OPEN", StateBool},
		{"CLOSED", StateBool},
		{"0", StateNumber},
		{"100", StateNumber},
		{"37.5", StateNumber},
		{"hello", StateString},
		{"12,34,56", StateString}, // HSB color triple stays a string
	}
	for _, tc := range cases {
		st := ParseState(tc.raw)
		if st.Kind != tc.kind {
			t.Errorf("ParseState(%q).Kind = %v, want %v", tc.raw, st.Kind, tc.kind)
		}
		if st.Raw != tc.raw {
			t.Errorf("ParseState(%q).Raw = %q", tc.raw, st.Raw)
		}
	}

	if st := ParseState("ON"); !st.Bool {
		t.Errorf("ParseState(ON).Bool = false, want true")
	}
	if st := ParseState("OFF"); st.Bool {
		t.Errorf("ParseState(OFF).Bool = true, want false")
	}
	if st := ParseState("37.5"); st.Number != 37.5 {
		t.Errorf("ParseState(37.5).Number = %v", st.Number)
	}
}

func TestParseItemJSON(t *testing.T) {
	body := []byte(`{"name":"LivingroomLight","label":"Living room light","type":"Dimmer","state":"40","link":"http://server/rest/items/LivingroomLight"}`)
	item, err := ParseItemJSON(body)
	if err != nil {
		t.Fatalf("ParseItemJSON: %v", err)
	}
	if item.Name != "LivingroomLight" {
		t.Errorf("Name = %q", item.Name)
	}
	if item.Type != TypeDimmer {
		t.Errorf("Type = %q, want Dimmer", item.Type)
	}
	if item.State.Kind != StateNumber || item.State.Number != 40 {
		t.Errorf("State = %+v, want number 40", item.State)
	}
}

func TestParseItemJSON_GroupWithBaseType(t *testing.T) {
	body := []byte(`{"name":"Shutters","type":"Group","groupType":"Rollershutter","state":"0"}`)
	item, err := ParseItemJSON(body)
	if err != nil {
		t.Fatalf("ParseItemJSON: %v", err)
	}
	if !item.IsOfTypeOrGroupType(TypeRollershutter) {
		t.Errorf("group of Rollershutter not recognized: %+v", item)
	}
	if item.IsOfTypeOrGroupType(TypeDimmer) {
		t.Errorf("group wrongly matches Dimmer")
	}
}

func TestParseItemJSON_Malformed(t *testing.T) {
	for _, body := range []string{
		`{not json`,
		`{"label":"no name or type"}`,
		`[]`,
	} {
		if _, err := ParseItemJSON([]byte(body)); err == nil {
			t.Errorf("ParseItemJSON(%q): expected error", body)
		}
	}
}

func TestParseItemXML(t *testing.T) {
	body := []byte(`<item><type>SwitchItem</type><name>Heating</name><state>ON</state><link>http://server/rest/items/Heating</link></item>`)
	item, err := ParseItemXML(body)
	if err != nil {
		t.Fatalf("ParseItemXML: %v", err)
	}
	if item.Type != TypeSwitch {
		t.Errorf("Type = %q, want Switch (Item suffix trimmed)", item.Type)
	}
	if item.State.Kind != StateBool || !item.State.Bool {
		t.Errorf("State = %+v, want bool true", item.State)
	}
}

func TestParseItemXML_Malformed(t *testing.T) {
	for _, body := range []string{
		`<item><type>SwitchItem</type>`,
		`<other/>`,
		`not xml at all`,
	} {
		if _, err := ParseItemXML([]byte(body)); err == nil {
			t.Errorf("ParseItemXML(%q): expected error", body)
		}
	}
}

func TestParseItem_ContentTypeSelection(t *testing.T) {
	jsonBody := []byte(`{"name":"A","type":"Switch","state":"OFF"}`)
	xmlBody := []byte(`<item><type>SwitchItem</type><name>A</name><state>OFF</state></item>`)

	if _, err := ParseItem("application/json;charset=UTF-8", jsonBody); err != nil {
		t.Errorf("json with charset param: %v", err)
	}
	if _, err := ParseItem("application/xml", xmlBody); err != nil {
		t.Errorf("application/xml: %v", err)
	}
	if _, err := ParseItem("text/xml", xmlBody); err != nil {
		t.Errorf("text/xml: %v", err)
	}
	if _, err := ParseItem("text/html", jsonBody); err == nil {
		t.Errorf("unsupported content type: expected error")
	}
}
