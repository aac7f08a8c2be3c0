// Package graph serves the Journaly GraphQL API.
package graph

import (
	graphql "github.com/graph-gophers/graphql-go"
)

const schemaSDL = `
schema {
	query: Query
	mutation: Mutation
}

scalar Time

enum DigestEmailConfig {
	DAILY
	WEEKLY
	OFF
}

type User {
	id: Int!
	handle: String!
	name: String
	# only visible to the user themselves
	email: String
	digestEmailConfig: DigestEmailConfig!
	createdAt: Time!
}

type Post {
	id: Int!
	title: String!
	body: String!
	author: User!
	threads: [Thread!]!
	postComments: [PostComment!]!
	createdAt: Time!
}

type Thread {
	id: Int!
	postId: Int!
	startIndex: Int!
	endIndex: Int!
	highlightedContent: String!
	comments: [Comment!]!
	createdAt: Time!
}

type Comment {
	id: Int!
	threadId: Int!
	body: String!
	author: User!
	createdAt: Time!
	updatedAt: Time!
}

type PostComment {
	id: Int!
	postId: Int!
	body: String!
	author: User!
	createdAt: Time!
	updatedAt: Time!
}

type AuthPayload {
	token: String!
	user: User!
}

type Query {
	currentUser: User
	userById(id: Int!): User!
	searchUsers(search: String!): [User!]!
	postById(id: Int!): Post!
	threadById(id: Int!): Thread!
	profilePosts(userId: Int!, cursor: Int, limit: Int): [Post!]!
}

type Mutation {
	signup(email: String!, handle: String!, name: String, password: String!): AuthPayload!
	login(identifier: String!, password: String!): AuthPayload!
	createPost(title: String!, body: String!): Post!
	createThread(postId: Int!, startIndex: Int!, endIndex: Int!, highlightedContent: String!): Thread!
	createComment(threadId: Int!, body: String!): Comment!
	updateComment(commentId: Int!, body: String!): Comment!
	deleteComment(commentId: Int!): Comment!
	createPostComment(postId: Int!, body: String!): PostComment!
	updatePostComment(postCommentId: Int!, body: String!): PostComment!
	deletePostComment(postCommentId: Int!): PostComment!
	updateDigestEmailConfig(digestEmailConfig: DigestEmailConfig!): User!
}
`

const maxQueryDepth = 12

// NewSchema parses the schema and binds it to the root resolver.
func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(schemaSDL, r, graphql.MaxDepth(maxQueryDepth))
}
