package reminders

import (
	"fmt"
	"html"
)

// RenderEmail produces the subject and HTML body for a scheduled reminder
// from its embedded snapshot.
func RenderEmail(emailType EmailType, data EmailData) (subject, body string) {
	date := data.MilestoneDate.Format("2 January 2006")
	cycle := html.EscapeString(data.CycleName)
	tenant := html.EscapeString(data.TenantName)
	name := html.EscapeString(data.RecipientName)
	if name == "" {
		name = "there"
	}

	switch emailType {
	case EmailTypeStartAdmin:
		subject = fmt.Sprintf("Appraisal cycle %q starts %s", data.CycleName, date)
		body = renderBody(name, tenant, fmt.Sprintf("The appraisal cycle <strong>%s</strong> starts on %s. Make sure templates and participants are ready.", cycle, date))
	case EmailTypeStartAll:
		subject = fmt.Sprintf("Appraisal cycle %q has started", data.CycleName)
		body = renderBody(name, tenant, fmt.Sprintf("The appraisal cycle <strong>%s</strong> starts on %s. You can now begin your review.", cycle, date))
	case EmailTypeEndAdmin:
		subject = fmt.Sprintf("Appraisal cycle %q ends %s", data.CycleName, date)
		body = renderBody(name, tenant, fmt.Sprintf("The appraisal cycle <strong>%s</strong> ends on %s. Review outstanding submissions before it closes.", cycle, date))
	case EmailTypeSelfDueAdmin:
		subject = fmt.Sprintf("Self reviews for %q due %s", data.CycleName, date)
		body = renderBody(name, tenant, fmt.Sprintf("Self reviews for <strong>%s</strong> are due on %s. Check completion before the deadline.", cycle, date))
	case EmailTypeSelfDueEmployee:
		subject = fmt.Sprintf("Your self review for %q is due %s", data.CycleName, date)
		body = renderBody(name, tenant, fmt.Sprintf("Your self review for <strong>%s</strong> is due on %s. Please submit it before the deadline.", cycle, date))
	case EmailTypeManagerDueAdmin:
		subject = fmt.Sprintf("Manager reviews for %q due %s", data.CycleName, date)
		body = renderBody(name, tenant, fmt.Sprintf("Manager reviews for <strong>%s</strong> are due on %s. Check completion before the deadline.", cycle, date))
	case EmailTypeManagerDueMgr:
		subject = fmt.Sprintf("Your manager reviews for %q are due %s", data.CycleName, date)
		body = renderBody(name, tenant, fmt.Sprintf("Your manager reviews for <strong>%s</strong> are due on %s. Please complete them for your team before the deadline.", cycle, date))
	default:
		subject = fmt.Sprintf("Appraisal reminder for %q", data.CycleName)
		body = renderBody(name, tenant, fmt.Sprintf("A milestone of the appraisal cycle <strong>%s</strong> falls on %s.", cycle, date))
	}
	return subject, body
}

func renderBody(name, tenant, line string) string {
	return fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>%s</p>
<p>— %s HR</p>
</body></html>`, name, line, tenant)
}
