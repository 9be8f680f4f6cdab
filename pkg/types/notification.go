package types

type NotificationType string

const (
	NotificationTypeInvoiceIssued   NotificationType = "INVOICE_ISSUED"
	NotificationTypePaymentDue      NotificationType = "PAYMENT_DUE"
	NotificationTypePaymentOverdue  NotificationType = "PAYMENT_OVERDUE"
	NotificationTypePaymentReceived NotificationType = "PAYMENT_RECEIVED"
	NotificationTypeInvoiceCanceled NotificationType = "INVOICE_CANCELED"
)
