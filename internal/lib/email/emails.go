package email

// SendWelcomeEmail greets a newly created admin user.
func (c *Client) SendWelcomeEmail(to, firstName string) error {
	data := map[string]string{
		"UserFirstName": firstName,
	}

	return c.SendEmail(
		to,
		"Welcome to Commerce Admin",
		TemplateWelcome,
		data,
	)
}
