package globals

type ContextKey string

const SessionKey ContextKey = "session"
