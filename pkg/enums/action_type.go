package enums

import "fmt"

// ActionType categorizes audit trail entries.
type ActionType string

const (
	ActionLogin       ActionType = "login"
	ActionLogout      ActionType = "logout"
	ActionFailedLogin ActionType = "failed_login"
	ActionCreate      ActionType = "create"
	ActionUpdate      ActionType = "update"
	ActionDelete      ActionType = "delete"
	ActionView        ActionType = "view"
	ActionRestock     ActionType = "restock"
	ActionUse         ActionType = "use"
)

var validActionTypes = []ActionType{
	ActionLogin,
	ActionLogout,
	ActionFailedLogin,
	ActionCreate,
	ActionUpdate,
	ActionDelete,
	ActionView,
	ActionRestock,
	ActionUse,
}

func (a ActionType) String() string {
	return string(a)
}

func (a ActionType) IsValid() bool {
	for _, candidate := range validActionTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActionType converts raw input into an ActionType.
func ParseActionType(value string) (ActionType, error) {
	for _, candidate := range validActionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid action type %q", value)
}
