package lifecycle

// Action represents a business action a caller may attempt on an invoice
type Action string

const (
	ActionAddItem       Action = "ADD_ITEM"
	ActionEditItem      Action = "EDIT_ITEM"
	ActionDeleteItem    Action = "DELETE_ITEM"
	ActionRecordPayment Action = "RECORD_PAYMENT"
	ActionDeletePayment Action = "DELETE_PAYMENT"
	ActionDeleteInvoice Action = "DELETE_INVOICE"
	ActionSendReminder  Action = "SEND_REMINDER"
	ActionView          Action = "VIEW"
	ActionPrint         Action = "PRINT"
)

// mutationGuarded lists the actions permitted only while the invoice is
// unsettled. Viewing, printing and payment deletion stay available in any
// state: a payment recorded in error must remain removable after settlement.
var mutationGuarded = map[Action]bool{
	ActionAddItem:       true,
	ActionEditItem:      true,
	ActionDeleteItem:    true,
	ActionRecordPayment: true,
	ActionDeleteInvoice: true,
	ActionSendReminder:  true,
}

// Permitted reports whether the action is allowed in the given state
func Permitted(state State, action Action) bool {
	if !mutationGuarded[action] {
		return true
	}
	return state == StateUnsettled
}

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}
