package confirmpayment

const (
	commandType = "ConfirmPayment"
)

// Command represents the success callback of the checkout provider for one session.
type Command struct {
	SessionID string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(sessionID string) Command {
	return Command{SessionID: sessionID}
}
