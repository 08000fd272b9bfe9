package notify

const verificationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Verify your email</h2>
    <p>Enter this code to verify your email address:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">%s</div>
    <p>The code expires in 24 hours. If you didn't create an account, you can ignore this email.</p>
  </div>
</body>
</html>`

const welcomeTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Welcome, %s!</h2>
    <p>Your email is verified and your account is ready. We're glad to have you on board.</p>
  </div>
</body>
</html>`

const resetRequestTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Reset your password</h2>
    <p>We received a request to reset your password. Click the button below to choose a new one:</p>
    <p style="text-align: center; margin: 24px 0;">
      <a href="%s" style="padding: 12px 20px; background: #22c55e; color: #ffffff; text-decoration: none; border-radius: 8px; font-weight: bold;">Reset Password</a>
    </p>
    <p>The link expires in 1 hour. If you didn't request this, you can ignore this email.</p>
  </div>
</body>
</html>`

const resetSuccessTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Password changed</h2>
    <p>Your password was reset successfully. If this wasn't you, contact support immediately.</p>
  </div>
</body>
</html>`
