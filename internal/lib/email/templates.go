package email

// Template names a file under templates/emails without its extension.
type Template string

const (
	TemplateWelcome Template = "welcome"
)
