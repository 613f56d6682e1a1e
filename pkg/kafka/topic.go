package kafka

// TopicPrefix namespaces every storefront topic.
const TopicPrefix = "storefront"

// Topic maps an event type such as "cart.updated" to its topic,
// "storefront.cart.updated".
func Topic(eventType string) string {
	return TopicPrefix + "." + eventType
}
