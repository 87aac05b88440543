// Package gateway groups the MessagingGateway implementations used by
// phoneverify: twilio for production WhatsApp/SMS, smslocal for the SMS Local
// OTP route, and console for development.
package gateway
