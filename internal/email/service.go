package email

import (
	"fmt"
	"net/smtp"
)

// Service sends email via SMTP.
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{host: host, port: port, from: from}
}

// SendLowStockAlert notifies an admin that a product crossed its threshold.
func (s *Service) SendLowStockAlert(to, productName string, stock, threshold int) error {
	subject := fmt.Sprintf("[Inventory] Low stock: %s (%d left)", productName, stock)
	if stock == 0 {
		subject = fmt.Sprintf("[Inventory] OUT OF STOCK: %s", productName)
	}
	return s.send(to, subject, BuildLowStockBody(productName, stock, threshold))
}

// SendRestockRequest notifies an admin about a new restock request.
func (s *Service) SendRestockRequest(to, productName string, quantity int, priority, notes string) error {
	subject := fmt.Sprintf("[Inventory] Restock requested: %s", productName)
	return s.send(to, subject, BuildRestockRequestBody(productName, quantity, priority, notes))
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
