package mail

import (
	"fmt"
	"time"
)

// OTPSubject is used for every one-time login code email.
const OTPSubject = "Your Spice Palace login code"

// OTPEmailHTML renders the body for a one-time login code email.
func OTPEmailHTML(code string, ttl time.Duration) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #C0392B; color: white; padding: 20px; text-align: center; }
		.content { padding: 20px; background-color: #f9f9f9; }
		.code { font-size: 32px; letter-spacing: 8px; font-weight: bold; text-align: center; padding: 15px; background-color: white; border-radius: 5px; }
		.footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Your login code</h1>
		</div>
		<div class="content">
			<p>Use this code to sign in to Spice Palace:</p>
			<p class="code">%s</p>
			<p>The code expires in %.0f minutes.</p>
			<p>If you did not request a code, you can ignore this email.</p>
		</div>
		<div class="footer">
			<p>Spice Palace</p>
		</div>
	</div>
</body>
</html>`, code, ttl.Minutes())
}
