package make_opportunity_from_lead_form

// DefaultSubject тема обращения, если посетитель её не выбрал
const DefaultSubject = "Website Query"

// ResultOK ответ на успешную отправку формы
const ResultOK = "okay"

// Request данные формы обратной связи
type Request struct {
	ClientIP     string
	Subject      string
	Message      string
	Sender       string
	FullName     string
	Organization string
	Designation  string
	MobileNo     string
	PhoneNo      string
	Country      string
}

// Settings настройки формы
type Settings struct {
	DefaultLeadSource string
	// QueryOptions тема обращения -> тип возможности
	QueryOptions map[string]string
}

// Response результат обработки формы
type Response struct {
	Result      string
	Lead        string
	LeadCreated bool
	Opportunity string
}
