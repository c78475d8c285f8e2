package email

import "fmt"

// HTML bodies for every notification the service sends. Kept as plain
// fmt templates; the markup is simple enough that html/template would
// only add ceremony.

func TicketCreatedBody(clientName, ticketID, title string) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #2563eb;">Ticket Created - HelpDeskPro</h2>
      <p>Hi %s,</p>
      <p>Your ticket has been created and will be handled shortly.</p>
      <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Ticket ID:</strong> %s</p>
        <p><strong>Title:</strong> %s</p>
      </div>
      <p>You will receive notifications whenever your ticket is updated.</p>
      <p style="color: #6b7280; font-size: 14px;">Thank you for using HelpDeskPro</p>
    </div>`, clientName, ticketID, title)
}

func TicketResponseBody(clientName, ticketID, title, agentName, comment string) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #2563eb;">New Response - HelpDeskPro</h2>
      <p>Hi %s,</p>
      <p>You have received a new response from <strong>%s</strong> on your ticket.</p>
      <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Ticket ID:</strong> %s</p>
        <p><strong>Title:</strong> %s</p>
        <hr style="border: 1px solid #d1d5db; margin: 15px 0;">
        <p><strong>Response:</strong></p>
        <p>%s</p>
      </div>
      <p style="color: #6b7280; font-size: 14px;">Thank you for using HelpDeskPro</p>
    </div>`, clientName, agentName, ticketID, title, comment)
}

func TicketClosedBody(clientName, ticketID, title string) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #16a34a;">Ticket Closed - HelpDeskPro</h2>
      <p>Hi %s,</p>
      <p>Your ticket has been marked as <strong>closed</strong>.</p>
      <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Ticket ID:</strong> %s</p>
        <p><strong>Title:</strong> %s</p>
      </div>
      <p>If you need further help, feel free to open a new ticket.</p>
      <p style="color: #6b7280; font-size: 14px;">Thank you for using HelpDeskPro</p>
    </div>`, clientName, ticketID, title)
}

func AgentReminderBody(agentName, ticketID, title string, hoursWithoutResponse int) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #ea580c;">Reminder: Ticket Awaiting Response</h2>
      <p>Hi %s,</p>
      <p>This ticket has gone <strong>%d hours</strong> without a response.</p>
      <div style="background-color: #fef3c7; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #f59e0b;">
        <p><strong>Ticket ID:</strong> %s</p>
        <p><strong>Title:</strong> %s</p>
      </div>
      <p>Please review and reply when possible.</p>
      <p style="color: #6b7280; font-size: 14px;">HelpDeskPro - Ticket System</p>
    </div>`, agentName, hoursWithoutResponse, ticketID, title)
}

func SurveyBody(clientName, ticketID, title string) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #2563eb;">Your Opinion Matters - HelpDeskPro</h2>
      <p>Hi %s,</p>
      <p>Your ticket was recently closed. We would love to hear about your experience.</p>
      <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
        <p><strong>Ticket ID:</strong> %s</p>
        <p><strong>Title:</strong> %s</p>
      </div>
      <p>Please take a moment to rate our service:</p>
      <div style="text-align: center; margin: 30px 0;">
        <a href="#" style="display: inline-block; margin: 0 5px; padding: 10px 20px; background-color: #16a34a; color: white; text-decoration: none; border-radius: 5px;">Excellent</a>
        <a href="#" style="display: inline-block; margin: 0 5px; padding: 10px 20px; background-color: #3b82f6; color: white; text-decoration: none; border-radius: 5px;">Good</a>
        <a href="#" style="display: inline-block; margin: 0 5px; padding: 10px 20px; background-color: #f59e0b; color: white; text-decoration: none; border-radius: 5px;">Fair</a>
        <a href="#" style="display: inline-block; margin: 0 5px; padding: 10px 20px; background-color: #ef4444; color: white; text-decoration: none; border-radius: 5px;">Poor</a>
      </div>
      <p style="color: #6b7280; font-size: 14px;">Thank you for using HelpDeskPro</p>
    </div>`, clientName, ticketID, title)
}

func UnassignedAlertBody(agentName string, count int) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #ea580c;">Pending Tickets - HelpDeskPro</h2>
      <p>Hi %s,</p>
      <p>There are <strong>%d tickets</strong> waiting to be assigned.</p>
      <p>Please review the queue and pick up available tickets.</p>
      <p style="color: #6b7280; font-size: 14px;">HelpDeskPro - Ticket System</p>
    </div>`, agentName, count)
}
