package notification

import "fmt"

// Event helpers below encode the fixed lifecycle-event → recipient mapping:
// placement and payment notify the buyer and every farmer with items in the
// order; the remaining transitions notify the single party that did not
// trigger them.

func (s *Service) OrderPlaced(buyerID int64, farmerIDs []int64, orderNumber string) {
	s.push(buyerID, TypeOrderPlaced, fmt.Sprintf("Your order %s has been placed", orderNumber))
	for _, farmerID := range farmerIDs {
		s.push(farmerID, TypeOrderPlaced, fmt.Sprintf("You have a new order %s", orderNumber))
	}
}

func (s *Service) PaymentReceived(buyerID int64, farmerIDs []int64, orderNumber string) {
	s.push(buyerID, TypePaymentReceived, fmt.Sprintf("Payment for order %s was received", orderNumber))
	for _, farmerID := range farmerIDs {
		s.push(farmerID, TypePaymentReceived, fmt.Sprintf("Order %s has been paid", orderNumber))
	}
}

func (s *Service) OrderConfirmed(buyerID int64, orderNumber string) {
	s.push(buyerID, TypeOrderConfirmed, fmt.Sprintf("Order %s has been confirmed by the farmer", orderNumber))
}

func (s *Service) OrderShipped(buyerID int64, orderNumber string) {
	s.push(buyerID, TypeOrderShipped, fmt.Sprintf("Order %s has been shipped", orderNumber))
}

func (s *Service) OrderDelivered(buyerID int64, orderNumber string) {
	s.push(buyerID, TypeOrderDelivered, fmt.Sprintf("Order %s has been delivered", orderNumber))
}

func (s *Service) OrderCancelled(recipients []int64, orderNumber string) {
	for _, userID := range recipients {
		s.push(userID, TypeOrderCancelled, fmt.Sprintf("Order %s has been cancelled", orderNumber))
	}
}
