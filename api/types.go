// Package api defines the wire types and endpoint names of the wAppLoxx
// controller CGI interface. The shapes mirror the vendor firmware exactly;
// numeric values frequently arrive as decimal strings and are kept that way
// on the wire, with typed helpers layered on top.
package api

import (
	"encoding/json"
	"strconv"
)

// Controller CGI endpoints. Every request is an HTTP GET against
// {base}/{endpoint} with query parameters.
const (
	EndpointLogin           = "login.cgi"
	EndpointLogout          = "logout.cgi"
	EndpointUserHome        = "user_home.cgi"
	EndpointUserSmartloxx   = "user_smartloxx.cgi"
	EndpointGetPanelStatus  = "getPanelStatus.cgi"
	EndpointSetPanel        = "setPanel.cgi"
	EndpointSetRemoteAccess = "setRemoteAccess.cgi"
	EndpointGetSystemStatus = "getSystemStatus.cgi"
	EndpointGetEventLog     = "getEventLog.cgi"
)

// IsAuthEndpoint reports whether endpoint is part of the login/logout
// lifecycle itself and therefore must never trigger an implicit login.
func IsAuthEndpoint(endpoint string) bool {
	return endpoint == EndpointLogin || endpoint == EndpointLogout
}

// Status values used by the controller in JSON responses.
const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
)

// ErrIPBlocked is the ErrMsg value signalling a temporary login lockout for
// the calling address. The response carries the lockout duration in
// BlockTime.
const ErrIPBlocked = "LOGIN_IP_BLOCKED"

// PanelAction selects the setPanel.cgi operation.
type PanelAction string

const (
	// PanelArm arms the panel. Fails when the panel is not ready for set.
	PanelArm PanelAction = "Arm"
	// PanelDisarm disarms the panel.
	PanelDisarm PanelAction = "Disarm"
	// PanelForcedDisarm disarms the panel even while an alarm is active.
	PanelForcedDisarm PanelAction = "ForcedDisarm"
)

// RemoteAccessAction selects the setRemoteAccess.cgi operation. "Remote
// access" is the vendor term for holding a smart-lock cylinder unlocked.
type RemoteAccessAction string

const (
	// RemoteAccessStart unlocks the lock until its access time runs out.
	RemoteAccessStart RemoteAccessAction = "Start"
	// RemoteAccessStop relocks the lock immediately.
	RemoteAccessStop RemoteAccessAction = "Stop"
)

// EventType filters getEventLog.cgi results.
type EventType string

const (
	EventAll       EventType = "All"
	EventAccess    EventType = "Access"
	EventArmDisarm EventType = "ArmDisarm"
	EventRecord    EventType = "Record"
	EventSystem    EventType = "System"
)

// PanelState is the normalised alarm-panel state derived from the Armed
// field of getPanelStatus.cgi.
type PanelState string

const (
	PanelArmed    PanelState = "ARMED"
	PanelBusy     PanelState = "BUSY"
	PanelDisarmed PanelState = "DISARMED"
	PanelSetOnly  PanelState = "SET_ONLY"
	PanelUnknown  PanelState = "UNKNOWN"
)

// PanelStateFromArmed maps the raw Armed value onto a PanelState. Firmware
// revisions report either ON/OFF or the state name directly.
func PanelStateFromArmed(raw string) PanelState {
	switch raw {
	case "ON", "ARMED":
		return PanelArmed
	case "OFF", "DISARMED":
		return PanelDisarmed
	case "BUSY":
		return PanelBusy
	case "SET_ONLY":
		return PanelSetOnly
	default:
		return PanelUnknown
	}
}

// StatusResult is the generic mutation acknowledgement returned by
// setPanel.cgi and setRemoteAccess.cgi.
type StatusResult struct {
	// Status is SUCCESS or FAIL.
	Status string `json:"Status"`
	// ErrMsg carries the failure reason, empty on success.
	ErrMsg string `json:"ErrMsg"`

	// Raw retains the undecoded response body for fields this struct does
	// not model.
	Raw json.RawMessage `json:"-"`
}

// OK reports whether the controller acknowledged the operation.
func (r StatusResult) OK() bool {
	return r.Status == StatusSuccess
}

// LoginResult is the login.cgi response body.
type LoginResult struct {
	// Status is SUCCESS or FAIL.
	Status string `json:"Status"`
	// ErrMsg identifies the failure class (see client.AuthError for the
	// code table). Empty on success.
	ErrMsg string `json:"ErrMsg"`
	// BlockTime is the lockout duration in seconds as a decimal string.
	// Only present when ErrMsg is LOGIN_IP_BLOCKED.
	BlockTime string `json:"BlockTime"`

	// Raw retains the undecoded response body.
	Raw json.RawMessage `json:"-"`
}

// OK reports whether the login succeeded.
func (r LoginResult) OK() bool {
	return r.Status == StatusSuccess
}

// BlockSeconds parses BlockTime, returning 0 when absent or malformed.
func (r LoginResult) BlockSeconds() int {
	n, err := strconv.Atoi(r.BlockTime)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PanelStatus is the getPanelStatus.cgi response body.
type PanelStatus struct {
	// Armed is the raw panel arm state (ON/OFF/ARMED/DISARMED/BUSY/...).
	Armed string `json:"Armed"`
	// AvailableLoxx lists the lock ids known to the panel, as decimal
	// strings, parallel-indexed with RemoteAccessTime.
	AvailableLoxx []string `json:"AvailableLoxx"`
	// RemoteAccessTime holds the seconds each lock in AvailableLoxx remains
	// unlocked; 0 means locked.
	RemoteAccessTime []int `json:"RemoteAccessTime"`

	// Raw retains the undecoded response body.
	Raw json.RawMessage `json:"-"`
}

// State returns the normalised panel state.
func (p PanelStatus) State() PanelState {
	return PanelStateFromArmed(p.Armed)
}

// AccessTime returns the remaining unlock seconds for the lock id, along
// with whether the id appears in AvailableLoxx at all. Ids absent from the
// snapshot yield (0, false): the panel simply does not report them.
func (p PanelStatus) AccessTime(id int) (int, bool) {
	want := strconv.Itoa(id)
	for i, lid := range p.AvailableLoxx {
		if lid != want {
			continue
		}
		if i >= len(p.RemoteAccessTime) {
			return 0, false
		}
		return p.RemoteAccessTime[i], true
	}
	return 0, false
}

// SystemStatus is the getSystemStatus.cgi response body. Beyond the ack
// fields the payload varies per firmware; consumers needing more read Raw.
type SystemStatus struct {
	// Status is SUCCESS or FAIL.
	Status string `json:"Status"`
	// ErrMsg carries the failure reason, empty on success.
	ErrMsg string `json:"ErrMsg"`

	// Raw retains the undecoded response body.
	Raw json.RawMessage `json:"-"`
}

// EventLog is the getEventLog.cgi response body. The entry schema differs
// between firmware versions and event types, so entries are surfaced
// undecoded.
type EventLog struct {
	// Status is SUCCESS or FAIL.
	Status string `json:"Status"`
	// ErrMsg carries the failure reason, empty on success.
	ErrMsg string `json:"ErrMsg"`

	// Raw retains the undecoded response body, including the event entries.
	Raw json.RawMessage `json:"-"`
}

// SmartloxxEntry describes one lock in the gSmartloxxList listing embedded
// in user_smartloxx.cgi.
type SmartloxxEntry struct {
	// ID is the vendor-assigned lock id as a decimal string.
	ID string `json:"ID"`
	// Name is the user-visible lock name.
	Name string `json:"Name"`
	// HwId is the lock hardware identifier.
	HwId string `json:"HwId"`
	// Cluster is the lock's cluster group as a decimal string.
	Cluster string `json:"Cluster"`
	// Disabled is ON when the lock is administratively disabled.
	Disabled string `json:"Disabled"`
}

// LockID parses the entry id.
func (e SmartloxxEntry) LockID() (int, error) {
	return strconv.Atoi(e.ID)
}

// ClusterID parses the cluster group, returning 0 when unset.
func (e SmartloxxEntry) ClusterID() int {
	n, err := strconv.Atoi(e.Cluster)
	if err != nil {
		return 0
	}
	return n
}

// IsDisabled reports whether the lock is administratively disabled.
func (e SmartloxxEntry) IsDisabled() bool {
	return e.Disabled == "ON"
}

// SmartloxxList is the JSON object assigned to the gSmartloxxList script
// variable in user_smartloxx.cgi.
type SmartloxxList struct {
	// List holds the lock descriptors in controller order.
	List []SmartloxxEntry `json:"List"`
}

// UserInfo is the JSON object assigned to the g_UserInfo script variable in
// user_home.cgi. Field names vary between firmware versions, so the object
// is exposed undecoded.
type UserInfo struct {
	// Raw retains the extracted JSON object.
	Raw json.RawMessage
}

// Decode unmarshals the user info object into v.
func (u UserInfo) Decode(v any) error {
	return json.Unmarshal(u.Raw, v)
}
