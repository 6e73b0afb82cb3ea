package config

const (
	// TopicAskAnswered is the NSQ topic receiving one event per answered question.
	TopicAskAnswered = "ask.answered"
)
