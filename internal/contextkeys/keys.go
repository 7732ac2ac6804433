package contextkeys

// Keys used to pass request-scoped values through gin's context.
const (
	Bot          = "ctx_bot"
	AccountEmail = "ctx_account_email"
	Account      = "ctx_account"
)
