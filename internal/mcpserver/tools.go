package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("wizard-status",
			mcp.WithDescription("Show the current step, what blocks it, and the draft"),
		),
		s.handleStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-update",
			mcp.WithDescription("Update draft fields. Omitted fields are left alone; an empty string or 0 clears a field. "+
				"Department and contact require a selected organization."),
			mcp.WithString("title", mcp.Description("Job title")),
			mcp.WithString("description", mcp.Description("Job description")),
			mcp.WithString("job_type",
				mcp.Description("Employment type"),
				mcp.Enum("full_time", "part_time", "contract", "contract_to_hire", "temporary", "internship"),
			),
			mcp.WithNumber("openings", mcp.Description("Number of openings, at least 1")),
			mcp.WithBoolean("remote_allowed", mcp.Description("Whether remote work is allowed")),
			mcp.WithString("city", mcp.Description("City")),
			mcp.WithString("state", mcp.Description("State or region")),
			mcp.WithString("postal_code", mcp.Description("Postal code")),
			mcp.WithString("country", mcp.Description("2 or 3 letter country code")),
			mcp.WithNumber("department_id", mcp.Description("Department id from list-departments")),
			mcp.WithNumber("contact_id", mcp.Description("Contact id from list-contacts")),
			mcp.WithNumber("recruiter_id", mcp.Description("Recruiter id from list-recruiters")),
			mcp.WithString("start_date", mcp.Description("Start date, YYYY-MM-DD")),
			mcp.WithString("salary", mcp.Description("Salary text")),
			mcp.WithString("rate", mcp.Description("Rate text")),
			mcp.WithString("duration", mcp.Description("Duration text")),
			mcp.WithString("notes", mcp.Description("Internal notes")),
			mcp.WithBoolean("auto_close", mcp.Description("Close the posting automatically on close_date")),
			mcp.WithString("close_date", mcp.Description("Close date, YYYY-MM-DD")),
			mcp.WithNumber("category_id", mcp.Description("Category id from list-categories")),
			mcp.WithNumber("workflow_id", mcp.Description("Workflow id from list-workflows")),
			mcp.WithArray("tags", mcp.Description("Tags, replacing the current list"),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithString("application_form", mcp.Description("Application form key")),
		),
		s.handleUpdate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-select-organization",
			mcp.WithDescription("Select the hiring organization. Its address replaces the draft's city, state and postal code; "+
				"department and contact are cleared."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Organization id from search-organizations")),
		),
		s.handleSelectOrganization,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-clear-organization",
			mcp.WithDescription("Clear the selected organization along with its department and contact"),
		),
		s.handleClearOrganization,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-next",
			mcp.WithDescription("Advance to the next step if the current one is complete. On the review step this creates the job."),
		),
		s.handleNext,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-back",
			mcp.WithDescription("Go back one step"),
		),
		s.handleBack,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-jump",
			mcp.WithDescription("Jump to an earlier step or one that was already completed"),
			mcp.WithString("step", mcp.Required(),
				mcp.Enum("basic", "location", "organization", "details", "tags", "review"),
			),
		),
		s.handleJump,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-cancel",
			mcp.WithDescription("Cancel the wizard. With unsaved changes this asks for confirmation through wizard-resolve-cancel."),
		),
		s.handleCancel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-resolve-cancel",
			mcp.WithDescription("Answer a pending cancel: keep the draft for later, discard it, or keep editing"),
			mcp.WithString("resolution", mcp.Required(),
				mcp.Enum("continue_later", "discard", "keep_editing"),
			),
		),
		s.handleResolveCancel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("search-organizations",
			mcp.WithDescription("Search organizations by name"),
			mcp.WithString("query", mcp.Required(), mcp.Description("Name or part of a name")),
		),
		s.handleSearchOrganizations,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-departments",
			mcp.WithDescription("List departments of the selected organization"),
		),
		s.handleListDepartments,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-contacts",
			mcp.WithDescription("List contacts of the selected organization"),
		),
		s.handleListContacts,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-recruiters",
			mcp.WithDescription("List recruiters"),
		),
		s.handleListRecruiters,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-workflows",
			mcp.WithDescription("List hiring workflows"),
		),
		s.handleListWorkflows,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-categories",
			mcp.WithDescription("List job categories"),
		),
		s.handleListCategories,
	)
}
