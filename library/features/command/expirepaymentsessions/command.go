package expirepaymentsessions

const (
	commandType = "ExpirePaymentSessions"
)

// Command triggers one expiry run over all PENDING payments.
type Command struct{}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a new Command.
func BuildCommand() Command {
	return Command{}
}
