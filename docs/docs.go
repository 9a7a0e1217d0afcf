// Package docs holds the OpenAPI description served under /swagger.
// It is regenerated from the handler annotations with `swag init -g main.go`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `
{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/applications": {
            "post": {
                "summary": "Apply to a job",
                "tags": [
                    "Applications"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "application",
                        "in": "body",
                        "required": true,
                        "description": "Application",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/applications/check": {
            "get": {
                "summary": "Has the caller applied?",
                "description": "Anonymous callers and companies always get hasApplied=false.",
                "tags": [
                    "Applications"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "jobId",
                        "in": "query",
                        "required": true,
                        "description": "Job id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "summary": "Login",
                "description": "Exchanges phone and password for an access and refresh token.",
                "tags": [
                    "Auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "loginBody",
                        "in": "body",
                        "required": true,
                        "description": "Credentials",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "429": {
                        "description": "Too Many Requests"
                    }
                }
            }
        },
        "/auth/logout": {
            "post": {
                "summary": "Logout",
                "description": "Revokes the current access token and, if given, the refresh token.",
                "tags": [
                    "Auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "logoutBody",
                        "in": "body",
                        "required": false,
                        "description": "Refresh token to revoke",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "summary": "Current user",
                "description": "Returns the caller and their profile, or {\"user\": null} without a valid token.",
                "tags": [
                    "Auth"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/auth/profile": {
            "get": {
                "summary": "Current user (authenticated)",
                "description": "Same payload as /auth/me but answers 401 without a valid token.",
                "tags": [
                    "Auth"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "summary": "Refresh tokens",
                "description": "Rotates a refresh token into a new token pair. The old refresh token stops working.",
                "tags": [
                    "Auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "refreshBody",
                        "in": "body",
                        "required": true,
                        "description": "Refresh token",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/auth/register": {
            "post": {
                "summary": "Register",
                "description": "Creates a talent or company account with its profile and returns a token pair.",
                "tags": [
                    "Auth"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "registerBody",
                        "in": "body",
                        "required": true,
                        "description": "Account details",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "409": {
                        "description": "Conflict"
                    },
                    "500": {
                        "description": "Internal Server Error"
                    }
                }
            }
        },
        "/cities": {
            "get": {
                "summary": "List cities",
                "description": "Lists cities, optionally only those of one province.",
                "tags": [
                    "Lookups"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "provinceId",
                        "in": "query",
                        "required": false,
                        "description": "Province id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/companies": {
            "get": {
                "summary": "Search companies",
                "tags": [
                    "Companies"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "cityId",
                        "in": "query",
                        "required": false,
                        "description": "City",
                        "type": "integer"
                    },
                    {
                        "name": "provinceId",
                        "in": "query",
                        "required": false,
                        "description": "Province",
                        "type": "integer"
                    },
                    {
                        "name": "industryLevel1Id",
                        "in": "query",
                        "required": false,
                        "description": "Top-level industry",
                        "type": "integer"
                    },
                    {
                        "name": "industryLevel2Id",
                        "in": "query",
                        "required": false,
                        "description": "Second-level industry",
                        "type": "integer"
                    },
                    {
                        "name": "keyword",
                        "in": "query",
                        "required": false,
                        "description": "Matches name or description",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page, from 1",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "description": "Page size, 1 to 100",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/companies/{id}": {
            "get": {
                "summary": "Company page",
                "description": "The company profile with its published postings.",
                "tags": [
                    "Companies"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Company id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            }
        },
        "/dashboard/applications": {
            "get": {
                "summary": "List own applications",
                "tags": [
                    "Dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "Filter by status",
                        "type": "string",
                        "enum": [
                            "pending",
                            "reviewed",
                            "accepted",
                            "rejected",
                            "withdrawn"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                }
            }
        },
        "/dashboard/applications/{id}": {
            "get": {
                "summary": "Get own application",
                "tags": [
                    "Dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Application id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            }
        },
        "/dashboard/applications/{id}/withdraw": {
            "post": {
                "summary": "Withdraw own application",
                "tags": [
                    "Dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Application id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/dashboard/favorites": {
            "get": {
                "summary": "List bookmarks",
                "tags": [
                    "Dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                }
            }
        },
        "/dashboard/jobs": {
            "get": {
                "summary": "List own postings",
                "tags": [
                    "Dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "Filter by status",
                        "type": "string",
                        "enum": [
                            "draft",
                            "published",
                            "closed",
                            "expired"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                }
            },
            "post": {
                "summary": "Create posting",
                "description": "Creates a published posting for the caller's company.",
                "tags": [
                    "Dashboard"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "job",
                        "in": "body",
                        "required": true,
                        "description": "Posting",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                }
            }
        },
        "/dashboard/jobs/{id}": {
            "get": {
                "summary": "Get own posting",
                "tags": [
                    "Dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Job id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            },
            "put": {
                "summary": "Update own posting",
                "description": "Partial update. Setting status to published stamps publishedAt if it was never set.",
                "tags": [
                    "Dashboard"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Job id",
                        "type": "integer"
                    },
                    {
                        "name": "job",
                        "in": "body",
                        "required": true,
                        "description": "Fields to change",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            },
            "delete": {
                "summary": "Delete own posting",
                "tags": [
                    "Dashboard"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Job id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            }
        },
        "/dashboard/resumes": {
            "get": {
                "summary": "List received applications",
                "tags": [
                    "Dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "Filter by status",
                        "type": "string",
                        "enum": [
                            "pending",
                            "reviewed",
                            "accepted",
                            "rejected",
                            "withdrawn"
                        ]
                    },
                    {
                        "name": "jobId",
                        "in": "query",
                        "required": false,
                        "description": "Filter by posting",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                }
            }
        },
        "/dashboard/resumes/{id}": {
            "get": {
                "summary": "Get received application",
                "tags": [
                    "Dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Application id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            }
        },
        "/dashboard/resumes/{id}/status": {
            "put": {
                "summary": "Review an application",
                "description": "Moves a received application along pending, reviewed, accepted or rejected, optionally with a reply.",
                "tags": [
                    "Dashboard"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Application id",
                        "type": "integer"
                    },
                    {
                        "name": "review",
                        "in": "body",
                        "required": true,
                        "description": "Decision",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    },
                    "409": {
                        "description": "Conflict"
                    }
                }
            }
        },
        "/favorites": {
            "get": {
                "summary": "Is the job bookmarked?",
                "description": "Anonymous callers and companies always get isFavorite=false.",
                "tags": [
                    "Favorites"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "jobId",
                        "in": "query",
                        "required": true,
                        "description": "Job id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/favorites/toggle": {
            "post": {
                "summary": "Toggle a bookmark",
                "tags": [
                    "Favorites"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "favorite",
                        "in": "body",
                        "required": true,
                        "description": "Job to toggle",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            }
        },
        "/industries-level1": {
            "get": {
                "summary": "List top-level industries",
                "tags": [
                    "Lookups"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/industries-level2": {
            "get": {
                "summary": "List second-level industries",
                "tags": [
                    "Lookups"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "level1Id",
                        "in": "query",
                        "required": false,
                        "description": "Parent industry id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/jobs": {
            "get": {
                "summary": "Search jobs",
                "description": "Lists published postings, newest first.",
                "tags": [
                    "Jobs"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "cityId",
                        "in": "query",
                        "required": false,
                        "description": "City",
                        "type": "integer"
                    },
                    {
                        "name": "provinceId",
                        "in": "query",
                        "required": false,
                        "description": "Province (all of its cities)",
                        "type": "integer"
                    },
                    {
                        "name": "industryLevel1Id",
                        "in": "query",
                        "required": false,
                        "description": "Top-level industry",
                        "type": "integer"
                    },
                    {
                        "name": "industryLevel2Id",
                        "in": "query",
                        "required": false,
                        "description": "Second-level industry",
                        "type": "integer"
                    },
                    {
                        "name": "salaryMin",
                        "in": "query",
                        "required": false,
                        "description": "Minimum of salary_min",
                        "type": "number"
                    },
                    {
                        "name": "salaryMax",
                        "in": "query",
                        "required": false,
                        "description": "Maximum of salary_max",
                        "type": "number"
                    },
                    {
                        "name": "workExperience",
                        "in": "query",
                        "required": false,
                        "description": "Years of experience the seeker has",
                        "type": "integer"
                    },
                    {
                        "name": "education",
                        "in": "query",
                        "required": false,
                        "description": "Required education",
                        "type": "string",
                        "enum": [
                            "high_school",
                            "associate",
                            "bachelor",
                            "master",
                            "phd"
                        ]
                    },
                    {
                        "name": "keyword",
                        "in": "query",
                        "required": false,
                        "description": "Matches position name or description",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "required": false,
                        "description": "Page, from 1",
                        "type": "integer"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "description": "Page size, 1 to 100",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    }
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "summary": "Job detail",
                "tags": [
                    "Jobs"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Job id",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            }
        },
        "/profile/company": {
            "get": {
                "summary": "Get company profile",
                "tags": [
                    "Profile"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            },
            "put": {
                "summary": "Update company profile",
                "description": "Partial update. companyName, cityId and industryLevel1Id cannot be set to null.",
                "tags": [
                    "Profile"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "profile",
                        "in": "body",
                        "required": true,
                        "description": "Fields to change",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                }
            }
        },
        "/profile/talent": {
            "get": {
                "summary": "Get talent profile",
                "tags": [
                    "Profile"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    },
                    "404": {
                        "description": "Not Found"
                    }
                }
            },
            "put": {
                "summary": "Update talent profile",
                "description": "Partial update. Omitted fields are unchanged, null clears a field, skillIds replaces the skill list.",
                "tags": [
                    "Profile"
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "profile",
                        "in": "body",
                        "required": true,
                        "description": "Fields to change",
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Bad Request"
                    },
                    "401": {
                        "description": "Unauthorized"
                    },
                    "403": {
                        "description": "Forbidden"
                    }
                }
            }
        },
        "/provinces": {
            "get": {
                "summary": "List provinces",
                "tags": [
                    "Lookups"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/skills": {
            "get": {
                "summary": "List skills",
                "tags": [
                    "Lookups"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "category",
                        "in": "query",
                        "required": false,
                        "description": "Skill category",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type 'Bearer YOUR_JWT_TOKEN' to authorize",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "TalentHub API",
	Description:      "Recruitment marketplace API: accounts, profiles, job postings, applications, favorites and reference data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
