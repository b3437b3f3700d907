package config

type WorkerKeyStruct struct {
	ChatActivityQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ChatActivityQueue: "chat_activity_queue",
}
