package openhab

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"mime"
	"strconv"
	"strings"
)

// ItemType is the normalized openHAB item type ("Switch", not "SwitchItem").
type ItemType string

const (
	TypeSwitch        ItemType = "Switch"
	TypeDimmer        ItemType = "Dimmer"
	TypeRollershutter ItemType = "Rollershutter"
	TypeColor         ItemType = "Color"
	TypeContact       ItemType = "Contact"
	TypeNumber        ItemType = "Number"
	TypeString        ItemType = "String"
	TypePlayer        ItemType = "Player"
	TypeGroup         ItemType = "Group"
)

// StateKind tags the interpretation of an item's state value.
type StateKind int

const (
	StateUndefined StateKind = iota
	StateNumber
	StateBool
	StateString
)

// State is a tagged item state: numeric, boolean, plain string, or undefined.
type State struct {
	Kind   StateKind
	Number float64
	Bool   bool
	Raw    string
}

// ParseState classifies a raw REST state string.
// "NULL", "UNDEF" and the empty string mean the item has no usable state.
func ParseState(raw string) State {
	switch raw {
	case "", "NULL", "UNDEF", "Undefined", "Uninitialized":
		return State{Kind: StateUndefined, Raw: raw}
	case "ON", "OPEN":
		return State{Kind: StateBool, Bool: true, Raw: raw}
	case "OFF", "CLOSED":
		return State{Kind: StateBool, Bool: false, Raw: raw}
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return State{Kind: StateNumber, Number: n, Raw: raw}
	}
	return State{Kind: StateString, Raw: raw}
}

// Item is a remote home-automation entity. It is always fetched fresh from the
// server per update attempt; nothing is cached locally.
type Item struct {
	Name      string
	Label     string
	Type      ItemType
	GroupType ItemType // base type when Type == TypeGroup
	State     State
	Link      string
}

// IsOfTypeOrGroupType reports whether the item, or the group it represents,
// has the given base type.
func (i Item) IsOfTypeOrGroupType(t ItemType) bool {
	if i.Type == t {
		return true
	}
	return i.Type == TypeGroup && i.GroupType == t
}

var ErrUnsupportedContentType = errors.New("unsupported item content type")

// ParseItem decodes an item representation, picking the JSON or XML variant
// from the response content type. Anything the parser cannot interpret is an
// error; callers classify that as an item-load failure.
func ParseItem(contentType string, body []byte) (Item, error) {
	mediaType := contentType
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = mt
	}
	switch {
	case strings.Contains(mediaType, "json"):
		return ParseItemJSON(body)
	case strings.Contains(mediaType, "xml"):
		return ParseItemXML(body)
	default:
		return Item{}, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
}

// itemJSON mirrors the openHAB REST JSON item representation.
type itemJSON struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Type      string `json:"type"`
	GroupType string `json:"groupType"`
	State     string `json:"state"`
	Link      string `json:"link"`
}

// ParseItemJSON decodes the JSON item representation.
func ParseItemJSON(body []byte) (Item, error) {
	var raw itemJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return Item{}, fmt.Errorf("decode item json: %w", err)
	}
	if raw.Name == "" || raw.Type == "" {
		return Item{}, errors.New("item json missing name or type")
	}
	return itemFromFields(raw.Name, raw.Label, raw.Type, raw.GroupType, raw.State, raw.Link), nil
}

// itemXML mirrors the openHAB 1.x XML item representation.
type itemXML struct {
	XMLName xml.Name `xml:"item"`
	Name    string   `xml:"name"`
	Label   string   `xml:"label"`
	Type    string   `xml:"type"`
	State   string   `xml:"state"`
	Link    string   `xml:"link"`
}

// ParseItemXML decodes the XML item representation served by older servers.
func ParseItemXML(body []byte) (Item, error) {
	var raw itemXML
	if err := xml.Unmarshal(body, &raw); err != nil {
		return Item{}, fmt.Errorf("decode item xml: %w", err)
	}
	if raw.Name == "" || raw.Type == "" {
		return Item{}, errors.New("item xml missing name or type")
	}
	return itemFromFields(raw.Name, raw.Label, raw.Type, "", raw.State, raw.Link), nil
}

func itemFromFields(name, label, typ, groupType, state, link string) Item {
	return Item{
		Name:      name,
		Label:     label,
		Type:      normalizeType(typ),
		GroupType: normalizeType(groupType),
		State:     ParseState(state),
		Link:      link,
	}
}

// normalizeType maps both REST generations to one spelling:
// "SwitchItem" (1.x XML) and "Switch" (2.x+ JSON) both become "Switch".
func normalizeType(t string) ItemType {
	return ItemType(strings.TrimSuffix(t, "Item"))
}
