package leads

// SaveOptions параметры сохранения лида
type SaveOptions struct {
	// IgnoreMandatory разрешает сохранить лид без имени (входящие сообщения, веб-форма)
	IgnoreMandatory bool
}

// CommunicationSender отправитель входящего сообщения
type CommunicationSender struct {
	Email    string
	FullName string
	Phone    string
}
