// Package inference scores feature vectors with a binary churn classifier.
// Classifiers are either a local scorecard model file or a remote model server.
package inference
